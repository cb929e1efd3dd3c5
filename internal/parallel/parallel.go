// Package parallel splits independent block work across goroutines.
package parallel

import "sync"

// For splits [0, n) into at most workers contiguous, disjoint chunks and
// calls fn(start, end) for each chunk on its own goroutine. It returns once
// every chunk is done. With workers <= 1 (or a single chunk) fn runs inline.
func For(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
