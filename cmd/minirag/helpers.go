package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/minirag/pkg/modeladapter/usage"
	"github.com/joho/godotenv"
)

// waitingMessages are displayed next to the spinner while the call is in flight.
var waitingMessages = []string{
	"Asking Gemini...",
	"Waiting for the model...",
	"Brewing a response...",
	"Crunching tokens...",
	"Warming up neurons...",
}

// randomWaitingMessage returns a random waiting message.
func randomWaitingMessage() string {
	return waitingMessages[rand.IntN(len(waitingMessages))] //nolint:gosec // cosmetic randomness
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// renderMarkdown converts markdown text to terminal-formatted output. Any
// renderer failure falls back to the raw text.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// fmtTokens formats a token count with k/M suffixes.
func fmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// fmtDuration formats a duration for display, showing seconds or minutes:seconds.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}

func usageLine(model string, tc usage.TokenCount, elapsed time.Duration) string {
	return stderrStyles.dim.Render(fmt.Sprintf("%s · %s in / %s out · %s",
		model,
		fmtTokens(tc.InputTokens),
		fmtTokens(tc.OutputTokens),
		fmtDuration(elapsed),
	))
}
