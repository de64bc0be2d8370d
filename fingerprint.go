// Content fingerprints for drift detection.
//
// Record files are meant to be opened in an editor, which means they can
// change underneath a running table. Every record remembers a 64-bit
// fingerprint of the bytes last synchronized with disk (taken at load,
// push, and write-back); Verify re-reads the backing files and reports
// the keys whose on-disk bytes no longer match. Three algorithms are
// supported, selectable via Config.Fingerprint.
package binder

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"slices"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint algorithm constants.
const (
	FpXXH3    = 1 // Default, fastest
	FpFNV1a   = 2 // No external dependencies
	FpBlake2b = 3 // Best distribution
)

// fingerprint hashes data with the selected algorithm.
func fingerprint(alg int, data []byte) uint64 {
	switch alg {
	case FpXXH3:
		return xxh3.Hash(data)
	case FpFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return h.Sum64()
	case FpBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return binary.BigEndian.Uint64(h.Sum(nil))
	default:
		return 0
	}
}

// Verify re-reads every backing file and returns the sorted keys whose
// on-disk bytes differ from the last synchronized state — i.e. files
// edited outside this table since load, push, or the last write-back.
// Verify never mutates and works on read-only tables. In-memory edits
// that have not been written back are invisible to it; only the disk
// side of the record is compared.
func (t *Table[T]) Verify() ([]string, error) {
	if t.closed {
		return nil, ErrClosed
	}

	var drifted []string
	for key, rec := range t.records {
		data, err := os.ReadFile(filepath.Join(t.dir, rec.name))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrFileOp, rec.name, err)
		}
		if fingerprint(t.config.Fingerprint, data) != rec.sum {
			drifted = append(drifted, key)
		}
	}

	slices.Sort(drifted)
	return drifted, nil
}
