// External-change watching.
//
// The companion to Verify for long-lived processes: instead of polling
// fingerprints, Watch subscribes to filesystem events on the table
// directory and reports the keys of changed record files. Events are
// debounced so an editor's save dance (truncate, write, rename, chmod)
// collapses into one notification per key.
package binder

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks until ctx is done, invoking onChange with the key of
// every record file that changes in the table directory. Entries are
// classified with the same extension rules as Load, so foreign files
// and soft-delete artifacts never trigger a callback. onChange runs on
// the watcher's timer goroutine, not the caller's.
//
// Filesystem events carry no author, so the table's own write-backs are
// reported like any external edit; callers that write back while
// watching must expect their own changes to come around. Watch reads
// only construction-time state (directory, codec, policy), which keeps
// it safe to run alongside the single-owner mutation rule.
func (t *Table[T]) Watch(ctx context.Context, onChange func(key string)) error {
	if t.closed {
		return ErrClosed
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: watcher: %w", ErrFileOp, err)
	}
	defer w.Close()
	if err := w.Add(t.dir); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrFileOp, t.dir, err)
	}

	deb := &debouncer{
		interval: t.config.WatchDebounce,
		keys:     make(map[string]struct{}),
		emit:     onChange,
	}
	defer deb.stop()

	ext := t.config.Codec.Extension()
	t.log.Debug("watching table directory", "table", t.id, "dir", t.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("%w: event channel closed", ErrFileOp)
			}
			if ev.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			key, ok, _ := classify(filepath.Base(ev.Name), ext, t.config.Policy.Extensions)
			if !ok {
				continue
			}
			t.log.Debug("file event", "table", t.id, "key", key, "op", ev.Op.String())
			deb.trigger(key)
		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("%w: error channel closed", ErrFileOp)
			}
			t.log.Error("watch error", "table", t.id, "error", err)
		}
	}
}

// debouncer batches keys seen during a quiet period and emits them
// sorted once the period elapses without new events.
type debouncer struct {
	interval time.Duration
	emit     func(key string)

	mu    sync.Mutex
	timer *time.Timer
	keys  map[string]struct{}
}

func (d *debouncer) trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[key] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	keys := slices.Sorted(maps.Keys(d.keys))
	clear(d.keys)
	d.mu.Unlock()

	for _, key := range keys {
		d.emit(key)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
