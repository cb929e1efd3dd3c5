package parallel

import (
	"sync"
	"testing"
)

// TestForCoversRangeOnce checks every index is visited exactly once
func TestForCoversRangeOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 3, 7, 64} {
		n := 50
		counts := make([]int, n)

		var mu sync.Mutex
		For(n, workers, func(start, end int) {
			mu.Lock()
			defer mu.Unlock()
			for i := start; i < end; i++ {
				counts[i]++
			}
		})

		for i, c := range counts {
			if c != 1 {
				t.Errorf("workers=%d: index %d visited %d times", workers, i, c)
			}
		}
	}
}

// TestForEmpty never calls fn for an empty range
func TestForEmpty(t *testing.T) {
	called := false
	For(0, 4, func(start, end int) { called = true })
	if called {
		t.Errorf("Expected fn not to be called for n=0")
	}
}
