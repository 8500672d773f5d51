package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"

	"reco-api-go/apierr"
	"reco-api-go/logcolors"
)

// EntityType selects which catalog entity a search targets.
type EntityType string

const (
	EntityTrack    EntityType = "track"
	EntityArtist   EntityType = "artist"
	EntityAlbum    EntityType = "album"
	EntityPlaylist EntityType = "playlist"
)

// ParseEntityType validates a caller-supplied type string. An empty
// string defaults to track.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case "":
		return EntityTrack, nil
	case EntityTrack, EntityArtist, EntityAlbum, EntityPlaylist:
		return EntityType(s), nil
	}
	return "", apierr.Validation(fmt.Sprintf("Invalid search type: %s", s))
}

// SearchParams are the validated inputs for a catalog search.
type SearchParams struct {
	AccessToken string
	Query       string
	Type        EntityType
	Limit       int
	Market      string
	Offset      int
}

// Search forwards the query to the provider's search endpoint and
// reshapes the per-type response into a uniform result list.
// A 401 from the provider surfaces as a distinct token-expired error
// so the caller knows to refresh rather than retry blindly.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResults, error) {
	params := url.Values{}
	params.Set("q", p.Query)
	params.Set("type", string(p.Type))
	params.Set("limit", strconv.Itoa(p.Limit))
	params.Set("market", p.Market)
	params.Set("offset", strconv.Itoa(p.Offset))

	requestURL := c.cfg.Spotify.APIBaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	log.Debugf("%s Searching %s: %q (limit %d, market %s)", logcolors.LogSearch, p.Type, p.Query, p.Limit, p.Market)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindUpstreamService, "Search failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Errorf("%s Search endpoint returned %d", logcolors.LogSearch, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized {
			e := apierr.UpstreamAuth("Search failed", resp.StatusCode)
			e.Details = "Invalid or expired token"
			return nil, e
		}
		return nil, apierr.Upstream("Search failed", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, apierr.Parse("Invalid response from search endpoint", err)
	}

	return reshape(p.Type, &sr), nil
}

// reshape dispatches to the per-variant mapping function. Each entity
// type has exactly one mapper; adding a type without a mapper leaves
// an empty result rather than a partial one.
func reshape(t EntityType, sr *searchResponse) *SearchResults {
	out := &SearchResults{Results: []interface{}{}}

	switch t {
	case EntityTrack:
		if sr.Tracks == nil {
			return out
		}
		out.Total = sr.Tracks.Total
		for _, item := range sr.Tracks.Items {
			out.Results = append(out.Results, mapTrack(item))
		}
	case EntityArtist:
		if sr.Artists == nil {
			return out
		}
		out.Total = sr.Artists.Total
		for _, item := range sr.Artists.Items {
			out.Results = append(out.Results, mapArtist(item))
		}
	case EntityAlbum:
		if sr.Albums == nil {
			return out
		}
		out.Total = sr.Albums.Total
		for _, item := range sr.Albums.Items {
			out.Results = append(out.Results, mapAlbum(item))
		}
	case EntityPlaylist:
		if sr.Playlists == nil {
			return out
		}
		out.Total = sr.Playlists.Total
		for _, item := range sr.Playlists.Items {
			out.Results = append(out.Results, mapPlaylist(item))
		}
	}

	return out
}

func artistNames(artists []apiArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

func mapTrack(t apiTrack) TrackResult {
	return TrackResult{
		ResultCommon: ResultCommon{
			ID:           t.ID,
			Name:         t.Name,
			Images:       t.Album.Images,
			ExternalURLs: t.ExternalURLs,
			URI:          t.URI,
		},
		Artists:    artistNames(t.Artists),
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		Explicit:   t.Explicit,
		Popularity: t.Popularity,
		PreviewURL: t.PreviewURL,
	}
}

func mapArtist(a apiArtist) ArtistResult {
	return ArtistResult{
		ResultCommon: ResultCommon{
			ID:           a.ID,
			Name:         a.Name,
			Images:       a.Images,
			ExternalURLs: a.ExternalURLs,
			URI:          a.URI,
		},
		Genres:     a.Genres,
		Popularity: a.Popularity,
		Followers:  a.Followers.Total,
	}
}

func mapAlbum(a apiAlbum) AlbumResult {
	return AlbumResult{
		ResultCommon: ResultCommon{
			ID:           a.ID,
			Name:         a.Name,
			Images:       a.Images,
			ExternalURLs: a.ExternalURLs,
			URI:          a.URI,
		},
		Artists:     artistNames(a.Artists),
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
	}
}

func mapPlaylist(p apiPlaylist) PlaylistResult {
	return PlaylistResult{
		ResultCommon: ResultCommon{
			ID:           p.ID,
			Name:         p.Name,
			Images:       p.Images,
			ExternalURLs: p.ExternalURLs,
			URI:          p.URI,
		},
		Description: p.Description,
		Owner:       p.Owner.DisplayName,
		TotalTracks: p.Tracks.Total,
	}
}
