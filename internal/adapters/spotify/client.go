// Package spotify implements the metadata provider port against the Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/jukebox/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Options tune retries and logging.
type Options struct {
	MaxRetries int
	Backoff    time.Duration
	Logger     *zerolog.Logger
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	logger      zerolog.Logger
}

// compile-time interface assertion
var _ ports.MetadataProvider = (*Client)(nil)

// NewClient constructs a Spotify client around an already authorised httpClient.
func NewClient(httpClient *http.Client, baseURL string, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.Backoff,
		logger:      logger,
	}
}

// NewClientCredentials authenticates with the client credentials flow. Tokens
// are fetched lazily and refreshed by the returned client; ctx scopes token
// requests and should live as long as the client.
func NewClientCredentials(ctx context.Context, clientID, clientSecret, tokenURL, baseURL string, opts Options) *Client {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cfg.Client(ctx)
	httpClient.Timeout = 15 * time.Second
	return NewClient(httpClient, baseURL, opts)
}
