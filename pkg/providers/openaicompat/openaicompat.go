// Package openaicompat provides a Generator that reaches Gemini through its
// OpenAI-compatible chat completions endpoint using the openai-go SDK.
package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/germanamz/minirag/pkg/modeladapter/usage"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com" + CompatPath

// CompatPath is appended to a base URL that names only a host, so the same
// host root works for every backend.
const CompatPath = "/v1beta/openai/"

var _ modeladapter.Generator = (*Adapter)(nil)

// Options configures an Adapter. Only APIKey and Model are required.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string       // Host root or full endpoint; defaults to DefaultBaseURL.
	HTTPClient  *http.Client // Nil uses the SDK default.
	Temperature *float64     // Nil leaves the server default.
	MaxTokens   int          // Zero leaves the server default.
}

// Adapter implements modeladapter.Generator using an openai.Client.
type Adapter struct {
	client openai.Client
	opts   Options
	usage  usage.Tracker
}

// New creates an OpenAI-compatible client. The SDK's built-in retries are
// disabled so a failed call surfaces immediately.
func New(opts Options) *Adapter {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(resolveBaseURL(opts.BaseURL)),
		option.WithMaxRetries(0),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &Adapter{client: openai.NewClient(reqOpts...), opts: opts}
}

// resolveBaseURL returns the endpoint the SDK should use, always with a
// trailing slash. A URL without a path gets CompatPath appended.
func resolveBaseURL(raw string) string {
	if raw == "" {
		return DefaultBaseURL
	}

	if u, err := url.Parse(raw); err == nil && strings.Trim(u.Path, "/") == "" {
		return strings.TrimRight(raw, "/") + CompatPath
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}

// UsageTracker returns the adapter's token usage tracker.
func (a *Adapter) UsageTracker() *usage.Tracker { return &a.usage }

// Generate sends the prompt as a single user message.
func (a *Adapter) Generate(ctx context.Context, req modeladapter.Request) (modeladapter.Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(a.opts.Model),
	}
	if a.opts.Temperature != nil {
		params.Temperature = openai.Float(*a.opts.Temperature)
	}
	if a.opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(a.opts.MaxTokens))
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return modeladapter.Response{}, fmt.Errorf("openai: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return modeladapter.Response{}, fmt.Errorf("openai: no choices in response")
	}

	tc := usage.TokenCount{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}
	a.usage.Add(tc)

	model := resp.Model
	if model == "" {
		model = a.opts.Model
	}

	choice := resp.Choices[0]

	return modeladapter.Response{
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Model:        model,
		Usage:        tc,
	}, nil
}
