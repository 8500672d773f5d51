// Package openrouter implements the chat-completion client used for
// mood/theme analysis and playlist generation.
package openrouter

// Message is a single chat message. Content is either a plain string
// or, for visual analysis, an ordered list of ContentPart values.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ContentPart is one block of a multi-part message. The Type
// discriminator is required on every part; the completion endpoint
// rejects payloads that omit it.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image reference: a remote URL or a data URL
// embedding base64 image bytes.
type ImageURL struct {
	URL string `json:"url"`
}

// ResponseFormat requests the provider's structured-output mode.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the completion request body.
type ChatRequest struct {
	Model            string          `json:"model"`
	Messages         []Message       `json:"messages"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	TopP             float64         `json:"top_p"`
	FrequencyPenalty float64         `json:"frequency_penalty"`
	PresencePenalty  float64         `json:"presence_penalty"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type chatUsage struct {
	TotalTokens int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// AnalysisResult is the raw analysis text from the model's first
// completion choice plus usage metadata.
type AnalysisResult struct {
	Analysis   string
	Model      string
	TokensUsed int
}

// PlaylistResult carries the parsed playlist object. The object is
// validated only for the presence of a tracks array; individual track
// fields are unverified model output.
type PlaylistResult struct {
	Playlist   map[string]interface{}
	TrackCount int
	Model      string
	TokensUsed int
}

// TextAnalysisInput is the validated input for text analysis.
type TextAnalysisInput struct {
	Text            string
	Mood            string
	GenrePreference string
}

// ImageType selects how image bytes are delivered.
type ImageType string

const (
	ImageTypeBase64 ImageType = "base64"
	ImageTypeURL    ImageType = "url"
)

// VisualAnalysisInput is the validated input for visual analysis.
type VisualAnalysisInput struct {
	ImageData      string
	ImageType      ImageType
	Description    string
	MoodPreference string
}

// PopularityRange biases playlist generation toward a popularity level.
type PopularityRange string

const (
	PopularityMainstream  PopularityRange = "mainstream"
	PopularityUnderground PopularityRange = "underground"
	PopularityMixed       PopularityRange = "mixed"
)

// InputType tags which analysis modality produced the playlist prompt.
type InputType string

const (
	InputText   InputType = "text"
	InputVisual InputType = "visual"
)

// PlaylistInput is the validated input for playlist generation.
type PlaylistInput struct {
	Analysis         string
	InputType        InputType
	PlaylistLength   int
	GenrePreferences []string
	ExplicitContent  bool
	PopularityRange  PopularityRange
}

// GenerationParams echoes the knobs a playlist was generated with.
func (p PlaylistInput) GenerationParams() map[string]interface{} {
	return map[string]interface{}{
		"playlist_length":   p.PlaylistLength,
		"genre_preferences": p.GenrePreferences,
		"explicit_content":  p.ExplicitContent,
		"popularity_range":  p.PopularityRange,
	}
}
