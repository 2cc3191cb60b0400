package analyzer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressCall struct {
	current, total int
	path           string
}

func TestTracker_TickAndSkip(t *testing.T) {
	var calls []progressCall
	tracker := NewTracker(func(current, total int, path string) {
		calls = append(calls, progressCall{current, total, path})
	})

	tracker.Add(3)
	tracker.Tick("A.java")
	tracker.Skip("Broken.java")
	tracker.Tick("C.java")

	assert.Equal(t, 3, tracker.Total())
	assert.Equal(t, 3, tracker.Current())
	assert.Equal(t, 1, tracker.Skipped())
	assert.Equal(t, []progressCall{
		{1, 3, "A.java"},
		{2, 3, "Broken.java"},
		{3, 3, "C.java"},
	}, calls)
}

func TestTracker_NilCallback(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Add(1)
	tracker.Tick("A.java")
	tracker.Skip("B.java")

	assert.Equal(t, 2, tracker.Current())
	assert.Equal(t, 1, tracker.Skipped())
}

func TestTracker_Concurrent(t *testing.T) {
	var mu sync.Mutex
	maxSeen := 0
	tracker := NewTracker(func(current, total int, path string) {
		mu.Lock()
		if current > maxSeen {
			maxSeen = current
		}
		mu.Unlock()
	})
	tracker.Add(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%10 == 0 {
				tracker.Skip("skipped.java")
				return
			}
			tracker.Tick("file.java")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, tracker.Current())
	assert.Equal(t, 10, tracker.Skipped())
	assert.Equal(t, 100, maxSeen)
}

func TestTrackerContext(t *testing.T) {
	assert.Nil(t, TrackerFromContext(context.Background()))

	tracker := NewTracker(nil)
	ctx := WithTracker(context.Background(), tracker)
	got := TrackerFromContext(ctx)
	require.NotNil(t, got)
	assert.Same(t, tracker, got)
}
