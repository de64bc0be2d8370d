// Write-back of in-memory values to backing files.
package binder

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// WriteBack re-encodes every in-memory value into its backing file:
// truncate to empty, seek to the start, write the pretty-printed
// encoding through the retained handle. A clean table is a successful
// no-op; a read-only table fails with ErrReadOnly before touching
// anything.
//
// The dirty flag is cleared on entry, so the partial-failure contract
// is deliberately weak: a failure partway through leaves some files
// rewritten and others stale while Dirty() already reads false. Callers
// that need stronger guarantees must retry or rebuild from memory.
func (t *Table[T]) WriteBack() error {
	if t.closed {
		return ErrClosed
	}
	if !t.config.Policy.Permission.writable() {
		return ErrReadOnly
	}
	if !t.dirty {
		return nil
	}

	t.dirty = false
	for _, key := range slices.Sorted(maps.Keys(t.records)) {
		if err := t.flush(t.records[key]); err != nil {
			return err
		}
	}
	t.log.Debug("write-back complete", "table", t.id, "records", len(t.records))
	return nil
}

// flush rewrites one record's backing file from its in-memory value and
// refreshes the record's synchronized-content fingerprint.
func (t *Table[T]) flush(rec *Record[T]) error {
	data, err := t.config.Codec.Marshal(rec.value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrCodec, rec.key, err)
	}
	if err := rec.file.Truncate(0); err != nil {
		return fmt.Errorf("%w: truncate %s: %w", ErrFileOp, rec.name, err)
	}
	if _, err := rec.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek %s: %w", ErrFileOp, rec.name, err)
	}
	if _, err := rec.file.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrFileOp, rec.name, err)
	}
	rec.sum = fingerprint(t.config.Fingerprint, data)
	return nil
}
