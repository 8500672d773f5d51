package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"reco-api-go/apierr"
	"reco-api-go/logcolors"
)

// Track count bounds for playlist generation.
const (
	MinPlaylistLength = 5
	MaxPlaylistLength = 50
)

// Validate checks the playlist-generation input bounds. Rejection
// happens before any outbound call.
func (in PlaylistInput) Validate() error {
	if in.Analysis == "" {
		return apierr.Validation("Analysis data is required")
	}
	switch in.InputType {
	case InputText, InputVisual:
	default:
		return apierr.Validation(fmt.Sprintf("Invalid input type: %s", in.InputType))
	}
	if in.PlaylistLength < MinPlaylistLength || in.PlaylistLength > MaxPlaylistLength {
		return apierr.Validation(fmt.Sprintf("Playlist length must be between %d and %d", MinPlaylistLength, MaxPlaylistLength))
	}
	switch in.PopularityRange {
	case PopularityMainstream, PopularityUnderground, PopularityMixed:
	default:
		return apierr.Validation(fmt.Sprintf("Invalid popularity range: %s", in.PopularityRange))
	}
	return nil
}

func (in PlaylistInput) systemPrompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a music curator and playlist expert. Based on the provided analysis from %s input, create a thoughtful music playlist.

Your task:
1. Generate a playlist of exactly %d songs
2. Each song should match the mood and characteristics from the analysis
3. Provide diverse but coherent song selections
4. Include both popular and lesser-known tracks for discovery
5. Consider the flow and progression of the playlist

Output format (JSON):
{
  "playlist_name": "Creative playlist name based on the analysis",
  "description": "Brief description explaining the playlist concept",
  "mood_tags": ["tag1", "tag2", "tag3"],
  "tracks": [
    {
      "title": "Song Title",
      "artist": "Artist Name",
      "album": "Album Name (if known)",
      "year": "Release year (if known)",
      "reason": "Brief explanation why this song fits"
    }
  ]
}

Guidelines:
- Prioritize song accuracy (real songs by real artists)
- Balance familiar hits with discovery tracks
- Consider playlist flow and energy progression
- Match the emotional tone from the analysis
`, in.InputType, in.PlaylistLength)

	if len(in.GenrePreferences) > 0 {
		fmt.Fprintf(&b, "- Incorporate these preferred genres: %s\n", strings.Join(in.GenrePreferences, ", "))
	}
	if !in.ExplicitContent {
		b.WriteString("- Avoid explicit content\n")
	}
	fmt.Fprintf(&b, "- Focus on %s popularity level", in.PopularityRange)

	return b.String()
}

// stripJSONFence removes a markdown code fence around a JSON payload.
// Some models wrap structured output in fences even in json_object mode.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// GeneratePlaylist asks the model for a structured-JSON track list
// based on analysis text. The parsed object is validated only for the
// presence of a tracks array; track metadata is model output and not
// cross-checked against the catalog.
func (c *Client) GeneratePlaylist(ctx context.Context, in PlaylistInput) (*PlaylistResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	userPrompt := fmt.Sprintf(`Based on this %s analysis, create a %d-song playlist:

Analysis: %s

Generate a cohesive playlist that captures the essence and mood identified in the analysis. Ensure all songs are real and accurately attributed.`,
		in.InputType, in.PlaylistLength, in.Analysis)

	model := c.cfg.OpenRouter.PlaylistModel
	log.Infof("%s Generating %d-track playlist from %s analysis with %s",
		logcolors.LogPlaylist, in.PlaylistLength, in.InputType, model)

	content, tokens, err := c.complete(ctx, ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: in.systemPrompt()},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:      2000,
		Temperature:    0.8,
		TopP:           0.9,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}, "Failed to generate playlist")
	if err != nil {
		return nil, err
	}

	var playlist map[string]interface{}
	if err := json.Unmarshal([]byte(stripJSONFence(content)), &playlist); err != nil {
		log.Errorf("%s Model returned unparseable playlist JSON: %v", logcolors.LogPlaylist, err)
		return nil, apierr.Parse("Failed to parse playlist data", err)
	}

	tracks, ok := playlist["tracks"].([]interface{})
	if !ok {
		return nil, apierr.New(apierr.KindParse, "Invalid playlist format generated")
	}

	return &PlaylistResult{
		Playlist:   playlist,
		TrackCount: len(tracks),
		Model:      model,
		TokensUsed: tokens,
	}, nil
}
