package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/germanamz/minirag/pkg/modeladapter/usage"
)

// Engine is the composition root: it validates configuration, builds the
// selected backend, and wraps it with the call middleware.
type Engine struct {
	cfg     Config
	log     *slog.Logger
	client  *http.Client
	backend modeladapter.Generator
	gen     modeladapter.Generator
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the Logger middleware.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithHTTPClient passes an HTTP client to the backend factory.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.client = c }
}

// New creates an Engine from the given configuration. It performs no network calls.
func New(ctx context.Context, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(e)
	}

	factory, _ := getFactory(cfg.Provider.Kind)

	backend, err := factory(ctx, cfg.Provider, e.client)
	if err != nil {
		return nil, fmt.Errorf("engine: provider %q: %w", cfg.Provider.Kind, err)
	}
	e.backend = backend

	timeout, _ := cfg.TimeoutDuration()

	e.gen = Chain(backend,
		Logger(e.log, cfg.Provider.Model),
		RequireText(),
		Recovery(),
		Timeout(timeout),
	)

	e.log.Debug("engine ready",
		"kind", cfg.Provider.Kind,
		"model", cfg.Provider.Model,
		"timeout", timeout,
	)

	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Generate sends prompt to the backend. An empty prompt falls back to the
// configured one.
func (e *Engine) Generate(ctx context.Context, prompt string) (modeladapter.Response, error) {
	if prompt == "" {
		prompt = e.cfg.Prompt
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	return e.gen.Generate(ctx, modeladapter.Request{
		Prompt:       prompt,
		SystemPrompt: e.cfg.SystemPrompt,
	})
}

// Run sends the configured prompt once.
func (e *Engine) Run(ctx context.Context) (modeladapter.Response, error) {
	return e.Generate(ctx, "")
}

// Usage returns the total tokens consumed through this engine. Backends that
// do not report usage yield a zero count.
func (e *Engine) Usage() usage.TokenCount {
	if r, ok := e.backend.(modeladapter.UsageReporter); ok {
		return r.UsageTracker().Total()
	}
	return usage.TokenCount{}
}
