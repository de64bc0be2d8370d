// In-memory records and directory entry classification.
//
// A Record pairs a decoded value with the open handle to its backing
// file. The handle is held for the table's lifetime when the table is
// writable (it is the same handle used for load and later write-back)
// and absent on read-only tables, where no write-back will ever occur.
package binder

import (
	"os"
	"strings"
)

// softDeleteSuffix marks files produced by SoftPop. Such files are
// engine-owned artifacts and are never re-scanned as active records,
// under any extension rule.
const softDeleteSuffix = "_soft_delete"

// Record is one key's in-memory state: the decoded value, the on-disk
// base name of its backing file, the retained write handle (nil on
// read-only tables), and the fingerprint of the last synchronized bytes.
type Record[T any] struct {
	key   string
	name  string
	file  *os.File
	value T
	sum   uint64
}

// Key returns the record's key.
func (r *Record[T]) Key() string { return r.key }

// Value returns a copy of the record's current in-memory value.
func (r *Record[T]) Value() T { return r.value }

func (r *Record[T]) close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// splitName splits a file name into base and extension. Only a dot
// after the first byte starts an extension, so a leading-dot-only name
// like ".profile" has none.
func splitName(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// classify maps a directory entry name to its record key under an
// extension rule. ok reports whether the entry qualifies as a record;
// foreign reports a strict-rule violation. Soft-delete artifacts are
// skipped under every rule.
func classify(name, ext string, rule ExtensionRule) (key string, ok, foreign bool) {
	if strings.HasSuffix(name, softDeleteSuffix) {
		return "", false, false
	}
	base, fext := splitName(name)
	switch {
	case rule == IgnoreExtensions:
		return base, true, false
	case fext == ext:
		return base, true, false
	default:
		return "", false, rule == RejectForeign
	}
}

// validKey rejects keys that cannot name a file inside the table
// directory: empty strings, path traversal, separators, NUL.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "/\\\x00") {
		return ErrInvalidKey
	}
	return nil
}
