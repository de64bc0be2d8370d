// Parallel read-only traversal.
package binder

import (
	"maps"
	"slices"
	"sync"
)

// Map applies fn to every record on a bounded worker pool and collects
// the results by key. The traversal is read-only and side-effect free
// from the table's point of view: fn receives a copy of each value and
// the dirty flag is untouched. Workers ≤ 0 selects the default bound.
//
// The result fold is single-threaded in key-sorted order, so when
// several fn calls fail, the error for the lexicographically-first key
// is the one returned. The pool drains fully before Map returns.
func Map[T, R any](t *Table[T], workers int, fn func(key string, value T) (R, error)) (map[string]R, error) {
	if t.closed {
		return nil, ErrClosed
	}

	keys := slices.Sorted(maps.Keys(t.records))
	out := make(map[string]R, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = defaultWorkers()
	}

	type outcome struct {
		res R
		err error
	}
	outcomes := make([]outcome, len(keys))

	// Each worker writes distinct slots; the WaitGroup is the only
	// synchronization needed.
	ch := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, len(keys)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				key := keys[i]
				outcomes[i].res, outcomes[i].err = fn(key, t.records[key].value)
			}
		}()
	}
	for i := range keys {
		ch <- i
	}
	close(ch)
	wg.Wait()

	for i, key := range keys {
		if outcomes[i].err != nil {
			return nil, outcomes[i].err
		}
		out[key] = outcomes[i].res
	}
	return out, nil
}
