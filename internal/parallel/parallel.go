// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Split partitions [0, n) into at most workers contiguous ranges, none shorter
// than minChunk except possibly the last. workers <= 0 means GOMAXPROCS.
// The ranges are returned in index order.
func Split(n, minChunk, workers int) []Range {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers
	out := make([]Range, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		out = append(out, Range{start, end})
	}
	return out
}

// For runs fn over the ranges of Split and waits for all of them. fn receives
// the chunk number so callers can keep per-chunk buffers. A single chunk runs
// on the calling goroutine.
func For(n, minChunk, workers int, fn func(chunk, start, end int)) {
	ranges := Split(n, minChunk, workers)
	switch len(ranges) {
	case 0:
		return
	case 1:
		fn(0, ranges[0].Start, ranges[0].End)
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		go func(chunk int, r Range) {
			defer wg.Done()
			fn(chunk, r.Start, r.End)
		}(i, r)
	}
	wg.Wait()
}
