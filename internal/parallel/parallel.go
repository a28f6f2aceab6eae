// Package parallel splits index ranges across CPU-bound workers.
package parallel

import (
	"runtime"
	"sync"
)

// minChunk keeps tiny inputs on the calling goroutine.
const minChunk = 4096

// For calls fn over contiguous, non-overlapping ranges covering [0, n).
// Ranges run concurrently; For returns when all of them are done.
func For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	perWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * perWorker
		if start >= n {
			break
		}
		end := start + perWorker
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
