// Snapshot archives for backup and transfer.
//
// A snapshot is the table's current in-memory state — every record
// freshly encoded — packed into a tar archive and zstd-compressed.
// Restoring unpacks the archive into a new directory with the same
// must-not-exist semantics as Create, producing a directory that Load
// accepts as-is.
package binder

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder — both are documented as safe for concurrent
// use, and construction is expensive enough to amortize across calls.
// SpeedFastest: record files are small human-readable text, where the
// ratio gain of higher levels is marginal.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Snapshot writes a compressed archive of the table's in-memory state
// to w. Records are archived in key order under their backing file
// names. Snapshot never mutates and works on read-only tables; unsaved
// in-memory edits are included, since the values are re-encoded rather
// than copied from disk.
func (t *Table[T]) Snapshot(w io.Writer) error {
	if t.closed {
		return ErrClosed
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	now := time.Now()
	for _, key := range slices.Sorted(maps.Keys(t.records)) {
		rec := t.records[key]
		data, err := t.config.Codec.Marshal(rec.value)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", ErrCodec, key, err)
		}
		hdr := &tar.Header{Name: rec.name, Mode: 0644, Size: int64(len(data)), ModTime: now}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("%w: tar %s: %w", ErrFileOp, rec.name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("%w: tar %s: %w", ErrFileOp, rec.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: tar: %w", ErrFileOp, err)
	}

	if _, err := w.Write(zstdEncoder.EncodeAll(buf.Bytes(), nil)); err != nil {
		return fmt.Errorf("%w: write snapshot: %w", ErrFileOp, err)
	}
	t.log.Debug("snapshot written", "table", t.id, "records", len(t.records))
	return nil
}

// RestoreSnapshot unpacks a snapshot stream into dir, which must not
// exist yet (same guard as Create). The restored directory is loadable
// with Load under the policies the snapshotting table used.
func RestoreSnapshot(dir string, r io.Reader) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s", ErrTableExists, dir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %w", ErrDirCreate, dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrDirCreate, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: read snapshot: %w", ErrFileOp, err)
	}
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("%w: zstd: %w", ErrCodec, err)
	}

	tr := tar.NewReader(bytes.NewReader(raw))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: tar: %w", ErrCodec, err)
		}
		// Archive entries are flat; Base guards against traversal in a
		// snapshot from an untrusted source.
		name := filepath.Base(hdr.Name)
		content, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("%w: tar %s: %w", ErrCodec, name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), content, 0644); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrFileOp, name, err)
		}
	}
	return nil
}
