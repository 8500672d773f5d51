package spotify

import (
	"net/http"
	"time"

	"reco-api-go/config"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// StateSource generates anti-forgery state values for login attempts.
// Injectable so tests can supply a deterministic generator.
type StateSource func() string

func defaultStateSource() string {
	return uuid.NewString()
}

// Client talks to the provider's accounts service and Web API.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	state      StateSource
}

// NewClient creates a Spotify client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
		state:      defaultStateSource,
	}
}

// WithStateSource returns a copy of the client using the given state
// generator.
func (c *Client) WithStateSource(s StateSource) *Client {
	clone := *c
	clone.state = s
	return &clone
}
