// Package batch runs work over a slice in fixed-size concurrent chunks
// with an optional pause between chunks. Both the multi-link crawl path
// and the deep-scrape loop throttle their upstream calls through it.
package batch

import (
	"context"
	"sync"
	"time"
)

// Run applies fn to every item, size items at a time. Items inside a chunk
// run concurrently; the next chunk starts only after the previous one has
// fully settled, after sleeping delay. Results are returned in input order.
// fn is responsible for converting its own failures into a result value.
// When ctx is cancelled between chunks the items never started are omitted
// from the result, so every returned value came from an fn call.
func Run[T, R any](ctx context.Context, items []T, size int, delay time.Duration, fn func(context.Context, T) R) []R {
	if size <= 0 {
		size = 1
	}
	results := make([]R, len(items))

	for start := 0; start < len(items); start += size {
		if start > 0 && ctx.Err() != nil {
			return results[:start]
		}
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = fn(ctx, items[i])
			}(i)
		}
		wg.Wait()

		if delay > 0 && end < len(items) {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return results[:end]
			}
		}
	}

	return results
}
