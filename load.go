// Directory scanning and table loading.
//
// Load lists the directory, classifies every entry under the extension
// rule, then fans the qualifying entries out across a bounded worker
// pool that opens, reads, fingerprints, and decodes each file. Assembly
// into the final map is a single-threaded fold over the outcomes in
// os.ReadDir's lexicographic order, which makes error selection
// deterministic: when several entries fail under PromoteDecodeErrors,
// the lexicographically-first failure is the one reported.
package binder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

type scanJob struct {
	index int
	name  string
	key   string
}

type scanOutcome[T any] struct {
	rec *Record[T]
	err error
}

// Load opens an existing table directory. Every qualifying entry
// becomes one record; what qualifies, and what a non-qualifying or
// undecodable entry does to the load, is decided by the policy bundle.
// Files are opened read-write unless the permission is ReadOnly, in
// which case handles are not retained past the initial decode.
func Load[T any](dir string, config Config) (*Table[T], error) {
	config = config.withDefaults()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %w", ErrFileOp, dir, err)
	}

	// Classification runs sequentially over the sorted listing, so a
	// strict-rule violation always names the first offender.
	ext := config.Codec.Extension()
	var jobs []scanJob
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			if config.Policy.Extensions == RejectForeign {
				return nil, fmt.Errorf("%w: %s is not a regular file", ErrForeignFile, name)
			}
			continue
		}
		key, ok, foreign := classify(name, ext, config.Policy.Extensions)
		if foreign {
			return nil, fmt.Errorf("%w: %s", ErrForeignFile, name)
		}
		if !ok {
			continue
		}
		jobs = append(jobs, scanJob{index: len(jobs), name: name, key: key})
	}

	// Open/read/decode fan-out. Each worker writes a distinct outcome
	// slot, so no synchronization beyond the WaitGroup is needed.
	outcomes := make([]scanOutcome[T], len(jobs))
	if len(jobs) > 0 {
		writable := config.Policy.Permission.writable()
		ch := make(chan scanJob)
		var wg sync.WaitGroup
		for range min(config.ScanWorkers, len(jobs)) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range ch {
					rec, err := readRecord[T](filepath.Join(dir, j.name), j, writable, config)
					outcomes[j.index] = scanOutcome[T]{rec: rec, err: err}
				}
			}()
		}
		for _, j := range jobs {
			ch <- j
		}
		close(ch)
		wg.Wait()
	}

	// Single-threaded fold in listing order.
	records := make(map[string]*Record[T], len(jobs))
	var loadErr error
	for _, out := range outcomes {
		if out.err != nil {
			if config.Policy.DecodeErrors == SkipUndecodable && errors.Is(out.err, ErrCodec) {
				continue
			}
			if loadErr == nil {
				loadErr = out.err
			}
			continue
		}
		if loadErr != nil {
			out.rec.close()
			continue
		}
		if prev, ok := records[out.rec.key]; ok {
			// Only reachable under IgnoreExtensions, where two files
			// can share a base name.
			loadErr = fmt.Errorf("%w: %s and %s share key %q",
				ErrDuplicateKey, prev.name, out.rec.name, out.rec.key)
			out.rec.close()
			continue
		}
		records[out.rec.key] = out.rec
	}
	if loadErr != nil {
		for _, rec := range records {
			rec.close()
		}
		return nil, loadErr
	}

	t := newTable(dir, config, records)
	t.log.Debug("table loaded", "table", t.id, "dir", dir, "records", len(records),
		"permission", config.Policy.Permission.String())
	return t, nil
}

// readRecord loads one directory entry into a record. On read-only
// tables the handle is closed right after the decode; otherwise it is
// retained for write-back. A decode failure is returned wrapped in
// ErrCodec so the fold can apply the decode rule.
func readRecord[T any](path string, j scanJob, writable bool, config Config) (*Record[T], error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrFileOp, j.name, err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: read %s: %w", ErrFileOp, j.name, err)
	}

	var value T
	if err := config.Codec.Unmarshal(data, &value); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: decode %s: %w", ErrCodec, j.name, err)
	}

	if !writable {
		f.Close()
		f = nil
	}
	return &Record[T]{
		key:   j.key,
		name:  j.name,
		file:  f,
		value: value,
		sum:   fingerprint(config.Fingerprint, data),
	}, nil
}
