// Record insertion.
package binder

import (
	"fmt"
	"os"
	"path/filepath"
)

// Push inserts value under key and creates its backing file
// "<key>.<ext>". The file must not already exist on disk. Push only
// creates the file — content is written on the next write-back, so the
// file stays empty until then.
//
// Insertion is all-or-nothing with respect to both the map and the
// filesystem: if a record for key is already in memory (possible only
// when its file was deleted out from under the table, since the O_EXCL
// create would have failed otherwise), the just-created file is removed
// before the duplicate-key error returns, leaving no orphan and the old
// record intact.
func (t *Table[T]) Push(key string, value T) error {
	if err := t.writable(); err != nil {
		return err
	}
	if err := validKey(key); err != nil {
		return fmt.Errorf("%w: %q", err, key)
	}

	name := key + "." + t.config.Codec.Extension()
	path := filepath.Join(t.dir, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrFileOp, name, err)
	}

	if _, ok := t.records[key]; ok {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	t.records[key] = &Record[T]{
		key:   key,
		name:  name,
		file:  f,
		value: value,
		sum:   fingerprint(t.config.Fingerprint, nil),
	}
	t.dirty = true
	return nil
}
