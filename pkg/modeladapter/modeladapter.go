package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/germanamz/minirag/pkg/modeladapter/usage"
)

// Request is a single-shot prompt sent to a model.
type Request struct {
	Prompt       string
	SystemPrompt string
}

// Response is the text a model returned for a Request.
type Response struct {
	Text         string
	FinishReason string
	Model        string
	Usage        usage.TokenCount
}

// Generator sends one prompt to a hosted model and returns its reply.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (Response, error)

// Generate calls the underlying function.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// UsageReporter provides token usage information from a generator.
// Generators that embed ModelAdapter implement this interface automatically.
type UsageReporter interface {
	UsageTracker() *usage.Tracker
}

// RateLimitError is returned when the API responds with HTTP 429 (Too Many Requests).
// It carries an optional RetryAfter duration parsed from the Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// Auth holds authentication settings for a model API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// ModelAdapter holds shared state for HTTP-based backends. Embed it in a
// concrete backend struct to get request building, auth, and usage tracking.
type ModelAdapter struct {
	Name        string        // Model identifier (e.g. "gemini-2.0-flash").
	Temperature *float64      // Sampling temperature; nil leaves the server default.
	MaxTokens   int           // Maximum tokens in the response.
	Auth        Auth          // Authentication settings.
	BaseURL     string        // API base URL (no trailing slash).
	Client      *http.Client  // HTTP client; falls back to a cached default.
	Usage       usage.Tracker // Token usage tracker.

	clientOnce    sync.Once
	defaultClient *http.Client
}

// UsageTracker returns the adapter's token usage tracker.
func (a *ModelAdapter) UsageTracker() *usage.Tracker { return &a.Usage }

// httpClient returns the configured client or a cached default client with a 2-minute timeout.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		a.defaultClient = &http.Client{Timeout: 2 * time.Minute}
	})

	return a.defaultClient
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	if a.Auth.Key != "" {
		header := a.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := a.Auth.Key
		if header == "Authorization" {
			scheme := a.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if a.Auth.Scheme != "" {
			value = a.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, sends a POST to the given path,
// checks for a 2xx status, and unmarshals the response body into dest.
// If dest is nil the response body is discarded after the status check.
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := a.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		respBody, _ := io.ReadAll(resp.Body)
		return &RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
