package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_CountsFromStart(t *testing.T) {
	clock := NewDeterministicClock(10)
	assert.Equal(t, int64(10), clock.Current())
	assert.Equal(t, int64(11), clock.Next())
	assert.Equal(t, int64(12), clock.Next())
	assert.Equal(t, int64(12), clock.Current())
}

func TestDeterministicClock_ResetReplays(t *testing.T) {
	clock := NewDeterministicClock(0)
	first := []int64{clock.Next(), clock.Next(), clock.Next()}

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	second := []int64{clock.Next(), clock.Next(), clock.Next()}
	assert.Equal(t, first, second)
}

func TestDeterministicClock_ConcurrentNextIsUnique(t *testing.T) {
	clock := NewDeterministicClock(0)
	const workers, calls = 20, 50

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
	assert.Equal(t, int64(workers*calls), clock.Current())
}
