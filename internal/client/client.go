// Package client implements the REST client for the catalog backend's
// management and catalog APIs. All response-shape ambiguity (wrapper key
// variants, namespace-as-array vs namespace-as-object) is normalized here;
// one canonical shape leaves this package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	defaultManagementPrefix = "/api/management/v1"
	defaultCatalogPrefix    = "/api/catalog/v1"
	defaultTimeout          = 30 * time.Second
	defaultRetryMax         = 3
)

// Config holds the settings for a backend client.
type Config struct {
	BaseURL          string
	ManagementPrefix string // default /api/management/v1
	CatalogPrefix    string // default /api/catalog/v1

	// OAuth2 client-credentials flow. Token acquisition and refresh are
	// delegated entirely to x/oauth2; when TokenURL is empty requests go
	// out unauthenticated (dev mode).
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string

	// Client-side pacing of backend calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int

	RetryMax int // 0 means default, negative disables retries
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Client is an HTTP client for the backend REST APIs.
type Client struct {
	baseURL    string
	mgmtPrefix string
	catPrefix  string
	httpClient *http.Client
	logger     *slog.Logger
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// pacingTransport waits on a token bucket before each backend call so that
// wide fan-outs cannot overwhelm the backend.
type pacingTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *pacingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(req)
}

// New builds a Client from config. The transport stack, innermost first:
// default transport, token-bucket pacing, OAuth2 bearer injection, retries.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		transport = &pacingTransport{
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
			base:    transport,
		}
	}
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		if cfg.Scope != "" {
			cc.Scopes = []string{cfg.Scope}
		}
		transport = &oauth2.Transport{
			Source: cc.TokenSource(context.Background()),
			Base:   transport,
		}
	}

	retry := retryablehttp.NewClient()
	switch {
	case cfg.RetryMax > 0:
		retry.RetryMax = cfg.RetryMax
	case cfg.RetryMax < 0:
		retry.RetryMax = 0 // retries disabled
	default:
		retry.RetryMax = defaultRetryMax
	}
	retry.Logger = nil
	retry.HTTPClient.Transport = transport
	retry.HTTPClient.Timeout = cfg.Timeout
	if retry.HTTPClient.Timeout == 0 {
		retry.HTTPClient.Timeout = defaultTimeout
	}

	mgmtPrefix := cfg.ManagementPrefix
	if mgmtPrefix == "" {
		mgmtPrefix = defaultManagementPrefix
	}
	catPrefix := cfg.CatalogPrefix
	if catPrefix == "" {
		catPrefix = defaultCatalogPrefix
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		mgmtPrefix: mgmtPrefix,
		catPrefix:  catPrefix,
		httpClient: retry.StandardClient(),
		logger:     logger,
	}, nil
}

// do issues one request and decodes the JSON response body into out (which
// may be nil for mutations). Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	data, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getRaw issues a GET and returns the raw body for callers that need to
// normalize ambiguous response shapes themselves.
func (c *Client) getRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.roundTrip(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts a human-readable message from an error body, which
// the backend serves either flat ({"message": ...}) or nested under "error".
func errorMessage(data []byte) string {
	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &flat); err == nil && flat.Message != "" {
		return flat.Message
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = "(no error body)"
	}
	return msg
}
