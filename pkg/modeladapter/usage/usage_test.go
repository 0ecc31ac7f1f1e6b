package usage_test

import (
	"sync"
	"testing"

	"github.com/germanamz/minirag/pkg/modeladapter/usage"
	"github.com/stretchr/testify/assert"
)

func TestTokenCount_Total(t *testing.T) {
	tc := usage.TokenCount{InputTokens: 100, OutputTokens: 50}
	assert.Equal(t, 150, tc.Total())
}

func TestTokenCount_String(t *testing.T) {
	tc := usage.TokenCount{InputTokens: 4, OutputTokens: 11}
	assert.Equal(t, "4 in / 11 out (15 total)", tc.String())
}

func TestTracker_Empty(t *testing.T) {
	var tr usage.Tracker

	assert.Equal(t, 0, tr.Count())
	assert.Equal(t, usage.TokenCount{}, tr.Total())
}

func TestTracker_AddTotal(t *testing.T) {
	var tr usage.Tracker

	tr.Add(usage.TokenCount{InputTokens: 10, OutputTokens: 5})
	tr.Add(usage.TokenCount{InputTokens: 20, OutputTokens: 10})

	assert.Equal(t, usage.TokenCount{InputTokens: 30, OutputTokens: 15}, tr.Total())
	assert.Equal(t, 2, tr.Count())
}

func TestTracker_ConcurrentAdd(t *testing.T) {
	var tr usage.Tracker
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(usage.TokenCount{InputTokens: 1, OutputTokens: 2})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Count())
	assert.Equal(t, usage.TokenCount{InputTokens: 50, OutputTokens: 100}, tr.Total())
}
