// Package usage accumulates token counts reported by model backends.
package usage

import (
	"fmt"
	"sync"
)

// TokenCount holds prompt and output token counts for a single call.
type TokenCount struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the sum of input and output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

func (tc TokenCount) String() string {
	return fmt.Sprintf("%d in / %d out (%d total)", tc.InputTokens, tc.OutputTokens, tc.Total())
}

// Tracker accumulates token usage across calls made by one backend.
// It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	total TokenCount
	count int
}

// Add records a token count entry.
func (t *Tracker) Add(tc TokenCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total.InputTokens += tc.InputTokens
	t.total.OutputTokens += tc.OutputTokens
	t.count++
}

// Total returns the aggregate token count across all entries.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.total
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}
