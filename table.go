// Core table type and lifecycle operations.
//
// A Table owns one directory for its lifetime and mirrors it in memory
// as a key→record map. Mutations mark the table dirty; WriteBack
// flushes every value to its backing file; Close releases handles and,
// under the automatic write policy, performs an implicit write-back.
//
// A table instance is exclusively owned by one goroutine. There is no
// internal locking for mutation — the only internal parallelism is the
// bounded scan pool inside Load and the read pool inside Map, both
// fully drained before their call returns.
package binder

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// Config holds table configuration options. The zero value is a usable
// default: automatic write-back, foreign files skipped, decode errors
// promoted, JSON codec.
type Config struct {
	Policy        Policy        // Permission, extension, and decode handling
	Codec         Codec         // Record file format (default JSON)
	Fingerprint   int           // 1=xxHash3, 2=FNV1a, 3=Blake2b
	ScanWorkers   int           // Parallel workers for Load's directory scan
	WatchDebounce time.Duration // Quiet period before Watch reports a change (default 100ms)
	Logger        *slog.Logger  // Structured log destination (default discards)
}

func (c Config) withDefaults() Config {
	if c.Codec == nil {
		c.Codec = JSON
	}
	if c.Fingerprint == 0 {
		c.Fingerprint = FpXXH3
	}
	if c.ScanWorkers <= 0 {
		c.ScanWorkers = defaultWorkers()
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = 100 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

func defaultWorkers() int {
	return min(runtime.NumCPU(), 8)
}

// Table is an in-memory view of one directory of record files. Keys
// are file base names; every key maps to exactly one backing file
// "<key>.<ext>" (arbitrary extensions under IgnoreExtensions).
type Table[T any] struct {
	dir     string
	records map[string]*Record[T]
	config  Config
	id      string
	log     *slog.Logger
	dirty   bool
	closed  bool
}

func newTable[T any](dir string, config Config, records map[string]*Record[T]) *Table[T] {
	return &Table[T]{
		dir:     dir,
		records: records,
		config:  config,
		id:      uuid.NewString(),
		log:     config.Logger,
	}
}

// Create makes a new, empty table at dir. The directory must not exist
// yet; parents are created as needed. A table cannot be created without
// eventually being writable, so a read-only policy is rejected.
func Create[T any](dir string, config Config) (*Table[T], error) {
	config = config.withDefaults()
	if config.Policy.Permission == ReadOnly {
		return nil, ErrCreateReadOnly
	}

	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, dir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrDirCreate, dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirCreate, err)
	}

	t := newTable(dir, config, map[string]*Record[T]{})
	t.log.Debug("table created", "table", t.id, "dir", dir,
		"permission", config.Policy.Permission.String())
	return t, nil
}

// Close releases the table. Under WriteAutomatic an implicit write-back
// runs first; its failure is logged at Error level and returned — the
// caller has no other recovery path at this point. Manual and read-only
// tables close without writing, so skipping WriteBack before closing a
// manual table loses every unflushed change. Close is idempotent; all
// other operations fail with ErrClosed afterwards.
func (t *Table[T]) Close() error {
	if t.closed {
		return nil
	}

	var errs []error
	if t.config.Policy.Permission == WriteAutomatic {
		if err := t.WriteBack(); err != nil {
			t.log.Error("implicit write-back failed on close", "table", t.id, "error", err)
			errs = append(errs, err)
		}
	}

	t.closed = true
	for _, rec := range t.records {
		if err := rec.close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: close %s: %w", ErrFileOp, rec.name, err))
		}
	}

	t.log.Debug("table closed", "table", t.id)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// writable gates every mutating operation.
func (t *Table[T]) writable() error {
	if t.closed {
		return ErrClosed
	}
	if !t.config.Policy.Permission.writable() {
		return ErrReadOnly
	}
	return nil
}

// Accessors

// Get returns the value stored at key.
func (t *Table[T]) Get(key string) (T, error) {
	var zero T
	if t.closed {
		return zero, ErrClosed
	}
	rec, ok := t.records[key]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return rec.value, nil
}

// Element returns the record stored at key.
func (t *Table[T]) Element(key string) (*Record[T], error) {
	if t.closed {
		return nil, ErrClosed
	}
	rec, ok := t.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return rec, nil
}

// Mut returns a pointer to the value stored at key for in-place edits.
// Handing out the pointer marks the table dirty unconditionally — the
// engine cannot tell "looked at mutably" from "actually changed".
func (t *Table[T]) Mut(key string) (*T, error) {
	if t.closed {
		return nil, ErrClosed
	}
	rec, ok := t.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	t.dirty = true
	return &rec.value, nil
}

// Exists reports whether key is present.
func (t *Table[T]) Exists(key string) bool {
	_, ok := t.records[key]
	return ok
}

// Len returns the number of records.
func (t *Table[T]) Len() int { return len(t.records) }

// IsEmpty reports whether the table holds no records.
func (t *Table[T]) IsEmpty() bool { return len(t.records) == 0 }

// Dirty reports whether in-memory values have changed since the last
// successful write-back (or since Create/Load).
func (t *Table[T]) Dirty() bool { return t.dirty }

// Writable reports whether the table's policy permits mutation.
func (t *Table[T]) Writable() bool { return t.config.Policy.Permission.writable() }

// Dir returns the table's directory path.
func (t *Table[T]) Dir() string { return t.dir }

// Policy returns the table's policy bundle.
func (t *Table[T]) Policy() Policy { return t.config.Policy }

// ID returns the table's instance identifier, also used as the "table"
// attribute on every log event the table emits.
func (t *Table[T]) ID() string { return t.id }

// Iterators. Keys carry no meaningful order; callers must not assume one.

// Keys yields every key.
func (t *Table[T]) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for key := range t.records {
			if !yield(key) {
				return
			}
		}
	}
}

// All yields every key and a copy of its value.
func (t *Table[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for key, rec := range t.records {
			if !yield(key, rec.value) {
				return
			}
		}
	}
}

// Values yields a copy of every value.
func (t *Table[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, rec := range t.records {
			if !yield(rec.value) {
				return
			}
		}
	}
}

// ValuesMut yields a pointer to every value for in-place edits. Calling
// it marks the table dirty, same as Mut.
func (t *Table[T]) ValuesMut() iter.Seq[*T] {
	t.dirty = true
	return func(yield func(*T) bool) {
		for _, rec := range t.records {
			if !yield(&rec.value) {
				return
			}
		}
	}
}
