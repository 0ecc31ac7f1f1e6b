package engine

import (
	"context"
	"net/http"
	"sync"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/germanamz/minirag/pkg/providers/gemini"
	"github.com/germanamz/minirag/pkg/providers/genaisdk"
	"github.com/germanamz/minirag/pkg/providers/openaicompat"
)

// ProviderFactory creates a Generator from a ProviderConfig. client is nil
// unless the caller supplied one with WithHTTPClient.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig, client *http.Client) (modeladapter.Generator, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factoryMu.Lock()
		defer factoryMu.Unlock()

		factories["genai"] = newGenAI
		factories["rest"] = newREST
		factories["openai"] = newOpenAICompat
	})
}

// RegisterProvider registers a custom provider factory under the given kind.
// It can be called before New to extend the engine with additional backends.
func RegisterProvider(kind string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func newGenAI(ctx context.Context, cfg ProviderConfig, client *http.Client) (modeladapter.Generator, error) {
	return genaisdk.New(ctx, genaisdk.Options{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		HTTPClient:  client,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}

func newREST(_ context.Context, cfg ProviderConfig, client *http.Client) (modeladapter.Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gemini.DefaultBaseURL
	}

	a := gemini.New(baseURL, cfg.APIKey, cfg.Model)
	a.Client = client
	a.Temperature = cfg.Temperature
	if cfg.MaxTokens > 0 {
		a.MaxTokens = cfg.MaxTokens
	}

	return a, nil
}

func newOpenAICompat(_ context.Context, cfg ProviderConfig, client *http.Client) (modeladapter.Generator, error) {
	return openaicompat.New(openaicompat.Options{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		HTTPClient:  client,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}), nil
}
