package modeladapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ modeladapter.UsageReporter = (*modeladapter.ModelAdapter)(nil)

func TestGeneratorFunc(t *testing.T) {
	g := modeladapter.GeneratorFunc(func(_ context.Context, req modeladapter.Request) (modeladapter.Response, error) {
		return modeladapter.Response{Text: "echo: " + req.Prompt}, nil
	})

	resp, err := g.Generate(context.Background(), modeladapter.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", resp.Text)
}

func TestNewRequest_BearerAuth(t *testing.T) {
	a := &modeladapter.ModelAdapter{BaseURL: "https://api.example.com", Auth: modeladapter.Auth{Key: "sk-test"}}

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/v1/models", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/models", req.URL.String())
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
}

func TestNewRequest_CustomHeader(t *testing.T) {
	a := &modeladapter.ModelAdapter{
		BaseURL: "https://api.example.com",
		Auth:    modeladapter.Auth{Key: "k", Header: "x-goog-api-key"},
	}

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "k", req.Header.Get("x-goog-api-key"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewRequest_CustomHeaderWithScheme(t *testing.T) {
	a := &modeladapter.ModelAdapter{
		BaseURL: "https://api.example.com",
		Auth:    modeladapter.Auth{Key: "k", Header: "x-api-key", Scheme: "Token"},
	}

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "Token k", req.Header.Get("x-api-key"))
}

func TestNewRequest_NoAuth(t *testing.T) {
	a := &modeladapter.ModelAdapter{BaseURL: "https://api.example.com"}

	req, err := a.NewRequest(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestPostJSON_Success(t *testing.T) {
	type reqBody struct {
		Prompt string `json:"prompt"`
	}
	type respBody struct {
		Text string `json:"text"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got reqBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Hello Gemini!", got.Prompt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(respBody{Text: "hi there"})
	}))
	defer srv.Close()

	a := &modeladapter.ModelAdapter{BaseURL: srv.URL, Client: srv.Client()}

	var dest respBody
	require.NoError(t, a.PostJSON(context.Background(), "/generate", reqBody{Prompt: "Hello Gemini!"}, &dest))
	assert.Equal(t, "hi there", dest.Text)
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"API key not valid"}`))
	}))
	defer srv.Close()

	a := &modeladapter.ModelAdapter{BaseURL: srv.URL, Client: srv.Client()}

	err := a.PostJSON(context.Background(), "/generate", map[string]string{}, nil)

	var se *modeladapter.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Contains(t, se.Body, "API key not valid")
	assert.ErrorContains(t, err, "unexpected status 403")
}

func TestPostJSON_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	a := &modeladapter.ModelAdapter{BaseURL: srv.URL, Client: srv.Client()}

	err := a.PostJSON(context.Background(), "/generate", map[string]string{}, nil)

	var rl *modeladapter.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.Equal(t, "rate limited (retry after 7s): quota exceeded", rl.Error())
}

func TestPostJSON_MarshalError(t *testing.T) {
	a := &modeladapter.ModelAdapter{BaseURL: "https://api.example.com"}

	err := a.PostJSON(context.Background(), "/generate", make(chan int), nil)
	assert.ErrorContains(t, err, "marshal payload")
}

func TestPostJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a := &modeladapter.ModelAdapter{BaseURL: srv.URL, Client: srv.Client()}

	var dest map[string]any
	err := a.PostJSON(context.Background(), "/generate", map[string]string{}, &dest)
	assert.ErrorContains(t, err, "decode response")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter(""))
	assert.Equal(t, 3*time.Second, modeladapter.ParseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter("-1"))
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), modeladapter.ParseRetryAfter("Mon, 02 Jan 2006 15:04:05 GMT"))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	d := modeladapter.ParseRetryAfter(future)
	assert.Greater(t, d, 58*time.Minute)
}
