// Package binder stores a named collection of records as individual
// human-readable files inside one directory. The whole table is loaded
// eagerly into memory and synchronized back to disk through explicit or
// automatic write-back, so it suits data you want editable and diffable
// per record rather than packed into a database — at the cost of only
// scaling to directories a process can fully hold in memory.
//
// A Table[T] owns its directory for its lifetime: one file per key,
// named "<key>.<ext>" where the extension comes from the configured
// codec (JSON by default). Policies decide whether the table may write,
// how foreign extensions are treated during load, and whether decode
// failures abort the load or merely skip the offending file.
package binder

import "errors"

// Sentinel errors for programmatic handling. Callers use errors.Is to
// distinguish recoverable conditions (ErrNotFound, ErrDuplicateKey)
// from configuration mistakes (ErrReadOnly, ErrCreateReadOnly) and
// underlying I/O or codec failures (ErrFileOp, ErrCodec — both wrap
// their cause).
var (
	ErrReadOnly       = errors.New("table is read-only")
	ErrNotFound       = errors.New("key not found")
	ErrDuplicateKey   = errors.New("key already exists")
	ErrForeignFile    = errors.New("foreign file in table directory")
	ErrFileOp         = errors.New("file operation failed")
	ErrCodec          = errors.New("encode or decode failed")
	ErrLengthMismatch = errors.New("keys and values differ in length")
	ErrDirCreate      = errors.New("cannot create table directory")
	ErrTableExists    = errors.New("table already exists")
	ErrCreateReadOnly = errors.New("cannot create a read-only table")
	ErrClosed         = errors.New("table is closed")
	ErrInvalidKey     = errors.New("invalid key")
)
