// Package spotify implements the accounts (OAuth) and Web API clients
// for the music-catalog provider.
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package spotify

// TokenPair is the provider's token response, forwarded verbatim to
// the caller. The service never persists any of it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// AuthorizationURL is the login redirect target plus the anti-forgery
// state generated for this attempt.
type AuthorizationURL struct {
	URL   string `json:"auth_url"`
	State string `json:"state"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type followers struct {
	Total int `json:"total"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Wire types for the search endpoint. Only the fields the reshape
// functions read are declared.

type apiArtist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Genres       []string          `json:"genres"`
	Popularity   int               `json:"popularity"`
	Followers    followers         `json:"followers"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

type apiAlbum struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []apiArtist       `json:"artists"`
	ReleaseDate  string            `json:"release_date"`
	TotalTracks  int               `json:"total_tracks"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

type apiTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []apiArtist       `json:"artists"`
	Album        apiAlbum          `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	Explicit     bool              `json:"explicit"`
	Popularity   int               `json:"popularity"`
	PreviewURL   string            `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

type apiPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       owner  `json:"owner"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

type trackPage struct {
	Items []apiTrack `json:"items"`
	Total int        `json:"total"`
}

type artistPage struct {
	Items []apiArtist `json:"items"`
	Total int         `json:"total"`
}

type albumPage struct {
	Items []apiAlbum `json:"items"`
	Total int        `json:"total"`
}

type playlistPage struct {
	Items []apiPlaylist `json:"items"`
	Total int           `json:"total"`
}

type searchResponse struct {
	Tracks    *trackPage    `json:"tracks"`
	Artists   *artistPage   `json:"artists"`
	Albums    *albumPage    `json:"albums"`
	Playlists *playlistPage `json:"playlists"`
}

// Reshaped result types. Every variant shares the common fields; the
// embedded struct marshals inline so callers see one flat object.

// ResultCommon holds the fields every search result carries.
type ResultCommon struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// TrackResult is the reshaped form of a track search item.
type TrackResult struct {
	ResultCommon
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	PreviewURL string   `json:"preview_url"`
}

// ArtistResult is the reshaped form of an artist search item.
type ArtistResult struct {
	ResultCommon
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
}

// AlbumResult is the reshaped form of an album search item.
type AlbumResult struct {
	ResultCommon
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
}

// PlaylistResult is the reshaped form of a playlist search item.
type PlaylistResult struct {
	ResultCommon
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TotalTracks int    `json:"total_tracks"`
}

// SearchResults is the uniform search response: a list of reshaped
// items plus the provider's total for the requested entity type.
type SearchResults struct {
	Results []interface{} `json:"results"`
	Total   int           `json:"total"`
}
