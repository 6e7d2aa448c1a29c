package splat

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny scenes on a single goroutine.
const minChunk = 4096

func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// parallelRange calls fn on disjoint [lo, hi) chunks of [0, n) using up to workers goroutines.
func parallelRange(n, workers int, fn func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 1 || n <= minChunk {
		return fn(0, n)
	}

	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := min(lo+chunk, n)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
