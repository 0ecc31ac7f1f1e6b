package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/mattn/go-runewidth"
)

// ErrEmptyResponse is returned when the model replied without any text.
var ErrEmptyResponse = errors.New("engine: model returned no text")

// Middleware wraps a Generator, returning a new Generator with added behaviour.
type Middleware func(next modeladapter.Generator) modeladapter.Generator

// Chain applies middlewares so that the first one is the outermost.
func Chain(g modeladapter.Generator, mws ...Middleware) modeladapter.Generator {
	for i := len(mws) - 1; i >= 0; i-- {
		g = mws[i](g)
	}
	return g
}

// --- Timeout middleware ---

// Timeout returns a Middleware that bounds each call with a deadline.
// A non-positive duration leaves the context untouched.
func Timeout(d time.Duration) Middleware {
	return func(next modeladapter.Generator) modeladapter.Generator {
		if d <= 0 {
			return next
		}

		return modeladapter.GeneratorFunc(func(ctx context.Context, req modeladapter.Request) (modeladapter.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.Generate(ctx, req)
		})
	}
}

// --- Recovery middleware ---

// Recovery returns a Middleware that catches panics and converts them to errors.
func Recovery() Middleware {
	return func(next modeladapter.Generator) modeladapter.Generator {
		return modeladapter.GeneratorFunc(func(ctx context.Context, req modeladapter.Request) (resp modeladapter.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("engine: backend panicked: %v", r)
				}
			}()

			return next.Generate(ctx, req)
		})
	}
}

// --- Logger middleware ---

// previewWidth is the display width of the prompt excerpt in log lines.
const previewWidth = 48

// Logger returns a Middleware that logs call start, duration, and error.
func Logger(log *slog.Logger, model string) Middleware {
	return func(next modeladapter.Generator) modeladapter.Generator {
		return modeladapter.GeneratorFunc(func(ctx context.Context, req modeladapter.Request) (modeladapter.Response, error) {
			log.DebugContext(ctx, "generate started",
				"model", model,
				"prompt", preview(req.Prompt),
			)

			start := time.Now()

			resp, err := next.Generate(ctx, req)

			duration := time.Since(start)

			if err != nil {
				log.ErrorContext(ctx, "generate failed",
					"model", model,
					"duration", duration,
					"error", err,
				)
			} else {
				log.DebugContext(ctx, "generate finished",
					"model", resp.Model,
					"duration", duration,
					"finish_reason", resp.FinishReason,
					"input_tokens", resp.Usage.InputTokens,
					"output_tokens", resp.Usage.OutputTokens,
				)
			}

			return resp, err
		})
	}
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, previewWidth, "...")
}

// --- RequireText middleware ---

// RequireText returns a Middleware that turns a reply with only whitespace
// into ErrEmptyResponse.
func RequireText() Middleware {
	return func(next modeladapter.Generator) modeladapter.Generator {
		return modeladapter.GeneratorFunc(func(ctx context.Context, req modeladapter.Request) (modeladapter.Response, error) {
			resp, err := next.Generate(ctx, req)
			if err != nil {
				return resp, err
			}

			if strings.TrimSpace(resp.Text) == "" {
				if resp.FinishReason != "" {
					return modeladapter.Response{}, fmt.Errorf("%w (finish reason %s)", ErrEmptyResponse, resp.FinishReason)
				}
				return modeladapter.Response{}, ErrEmptyResponse
			}

			return resp, nil
		})
	}
}
