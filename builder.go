// Fluent configuration builder.
//
// The builder is sugar over Config: it assembles a policy bundle and a
// directory path, then delegates to Create or Load. Every method
// returns the receiver, so a table is one chain:
//
//	tb, err := binder.New[Item]("items").Manual().RejectForeign().Load()
package binder

import "log/slog"

// Builder assembles a table configuration for dir. The zero
// configuration matches Config's defaults: automatic write-back,
// foreign files skipped, decode errors promoted, JSON codec.
type Builder[T any] struct {
	dir    string
	config Config
}

// New starts a builder for the table directory dir.
func New[T any](dir string) *Builder[T] {
	return &Builder[T]{dir: dir}
}

// Manual selects write permission with explicit write-back only.
func (b *Builder[T]) Manual() *Builder[T] {
	b.config.Policy.Permission = WriteManual
	return b
}

// Auto selects write permission with an implicit write-back on Close.
func (b *Builder[T]) Auto() *Builder[T] {
	b.config.Policy.Permission = WriteAutomatic
	return b
}

// ReadOnly forbids all mutation; load retains no file handles.
func (b *Builder[T]) ReadOnly() *Builder[T] {
	b.config.Policy.Permission = ReadOnly
	return b
}

// RejectForeign fails a load on the first entry whose extension does
// not match the codec's.
func (b *Builder[T]) RejectForeign() *Builder[T] {
	b.config.Policy.Extensions = RejectForeign
	return b
}

// SkipForeign silently skips entries whose extension does not match.
func (b *Builder[T]) SkipForeign() *Builder[T] {
	b.config.Policy.Extensions = SkipForeign
	return b
}

// IgnoreExtensions loads every regular file regardless of extension.
func (b *Builder[T]) IgnoreExtensions() *Builder[T] {
	b.config.Policy.Extensions = IgnoreExtensions
	return b
}

// SkipUndecodable drops files the codec cannot decode instead of
// failing the load.
func (b *Builder[T]) SkipUndecodable() *Builder[T] {
	b.config.Policy.DecodeErrors = SkipUndecodable
	return b
}

// WithCodec selects the record file format.
func (b *Builder[T]) WithCodec(c Codec) *Builder[T] {
	b.config.Codec = c
	return b
}

// WithLogger directs the table's log events to l.
func (b *Builder[T]) WithLogger(l *slog.Logger) *Builder[T] {
	b.config.Logger = l
	return b
}

// WithFingerprint selects the drift-detection hash algorithm.
func (b *Builder[T]) WithFingerprint(alg int) *Builder[T] {
	b.config.Fingerprint = alg
	return b
}

// WithScanWorkers bounds the parallel directory scan during Load.
func (b *Builder[T]) WithScanWorkers(n int) *Builder[T] {
	b.config.ScanWorkers = n
	return b
}

// Create builds a new, empty table at the configured directory.
func (b *Builder[T]) Create() (*Table[T], error) {
	return Create[T](b.dir, b.config)
}

// Load opens the existing table at the configured directory.
func (b *Builder[T]) Load() (*Table[T], error) {
	return Load[T](b.dir, b.config)
}
