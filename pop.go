// Record removal, hard and soft.
package binder

import (
	"fmt"
	"os"
	"path/filepath"
)

// Pop removes the record at key and deletes its backing file. A missing
// key fails with ErrNotFound and changes nothing. If the file deletion
// fails after the record left the map, the failure propagates but the
// map has already lost the record — memory and disk may then drift
// until the caller intervenes.
func (t *Table[T]) Pop(key string) error {
	if err := t.writable(); err != nil {
		return err
	}
	rec, ok := t.records[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	delete(t.records, key)
	t.dirty = true
	rec.close()
	if err := os.Remove(filepath.Join(t.dir, rec.name)); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrFileOp, rec.name, err)
	}
	return nil
}

// SoftPop removes the record at key from the active set while keeping
// its content on disk: the current value is re-encoded into a fresh
// file "<alt>.<ext>_soft_delete" (an empty alt defaults to key), then a
// normal Pop runs. Files with the soft-delete suffix are never
// re-scanned as active records; rename one back to "<alt>.<ext>" to
// resurrect it on the next load.
//
// The two effects are sequential, not atomic: a crash between writing
// the soft-delete copy and completing the pop leaves both files
// present. That duplicates data until the operation completes, but
// never loses it.
func (t *Table[T]) SoftPop(key, alt string) error {
	if err := t.writable(); err != nil {
		return err
	}
	rec, ok := t.records[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if alt == "" {
		alt = key
	}
	if err := validKey(alt); err != nil {
		return fmt.Errorf("%w: %q", err, alt)
	}

	name := alt + "." + t.config.Codec.Extension() + softDeleteSuffix
	f, err := os.OpenFile(filepath.Join(t.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrFileOp, name, err)
	}

	data, err := t.config.Codec.Marshal(rec.value)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: encode %s: %w", ErrCodec, key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrFileOp, name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrFileOp, name, err)
	}

	return t.Pop(key)
}
