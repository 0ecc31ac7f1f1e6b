// Package genaisdk provides a Generator backed by the official Google Gen AI
// Go SDK (google.golang.org/genai).
package genaisdk

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/germanamz/minirag/pkg/modeladapter/usage"
	"google.golang.org/genai"
)

var _ modeladapter.Generator = (*Adapter)(nil)

// Options configures an Adapter. Only APIKey and Model are required.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string       // Overrides the SDK's default endpoint.
	HTTPClient  *http.Client // Nil uses the SDK default.
	Temperature *float64     // Nil leaves the server default.
	MaxTokens   int          // Zero leaves the server default. Must fit in int32.
}

// Adapter implements modeladapter.Generator using a *genai.Client.
type Adapter struct {
	client *genai.Client
	opts   Options
	usage  usage.Tracker
}

// New creates a Gemini API client. It performs no network calls.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: new client: %w", err)
	}

	return &Adapter{client: client, opts: opts}, nil
}

// UsageTracker returns the adapter's token usage tracker.
func (a *Adapter) UsageTracker() *usage.Tracker { return &a.usage }

// Generate calls Models.GenerateContent with a single text prompt.
func (a *Adapter) Generate(ctx context.Context, req modeladapter.Request) (modeladapter.Response, error) {
	result, err := a.client.Models.GenerateContent(ctx, a.opts.Model, genai.Text(req.Prompt), a.config(req))
	if err != nil {
		return modeladapter.Response{}, fmt.Errorf("genai: generate content: %w", err)
	}

	if pf := result.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return modeladapter.Response{}, fmt.Errorf("genai: prompt blocked: %s", pf.BlockReason)
	}

	if len(result.Candidates) == 0 {
		return modeladapter.Response{}, fmt.Errorf("genai: empty candidates in response")
	}

	var tc usage.TokenCount
	if um := result.UsageMetadata; um != nil {
		tc = usage.TokenCount{
			InputTokens:  int(um.PromptTokenCount),
			OutputTokens: int(um.CandidatesTokenCount),
		}
	}
	a.usage.Add(tc)

	model := result.ModelVersion
	if model == "" {
		model = a.opts.Model
	}

	var finish string
	if c := result.Candidates[0]; c != nil {
		finish = string(c.FinishReason)
	}

	return modeladapter.Response{
		Text:         result.Text(),
		FinishReason: finish,
		Model:        model,
		Usage:        tc,
	}, nil
}

func (a *Adapter) config(req modeladapter.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if a.opts.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*a.opts.Temperature))
	}
	if a.opts.MaxTokens > 0 && a.opts.MaxTokens <= math.MaxInt32 {
		cfg.MaxOutputTokens = int32(a.opts.MaxTokens) //nolint:gosec // range checked above and by engine.Config.Validate
	}

	return cfg
}
