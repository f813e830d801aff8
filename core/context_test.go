package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(context.Background(), 12345)

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Go(func() {
			runID, ok := getRunID(ctx)
			assert.True(t, ok, "Goroutine %d: getRunID should return true", i)
			assert.Equal(t, int64(12345), runID, "Goroutine %d: runID should be 12345", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	baseCtx := context.Background()

	ctx1 := withRunID(baseCtx, 1)
	ctx2 := withRunID(baseCtx, 2)

	id1, ok1 := getRunID(ctx1)
	assert.True(t, ok1)
	assert.Equal(t, int64(1), id1)

	id2, ok2 := getRunID(ctx2)
	assert.True(t, ok2)
	assert.Equal(t, int64(2), id2)

	_, ok := getRunID(baseCtx)
	assert.False(t, ok)
}

// TestGetRunID_NonPositive tests that a zero run id counts as absent.
func TestGetRunID_NonPositive(t *testing.T) {
	_, ok := getRunID(withRunID(context.Background(), 0))
	assert.False(t, ok)
}
