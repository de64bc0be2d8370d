package binder

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestBuilderDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "table")
	tb, err := New[doc](dir).Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer tb.Close()

	p := tb.Policy()
	if p.Permission != WriteAutomatic {
		t.Errorf("Permission = %v, want WriteAutomatic", p.Permission)
	}
	if p.Extensions != SkipForeign {
		t.Errorf("Extensions = %v, want SkipForeign", p.Extensions)
	}
	if p.DecodeErrors != PromoteDecodeErrors {
		t.Errorf("DecodeErrors = %v, want PromoteDecodeErrors", p.DecodeErrors)
	}
}

func TestBuilderChain(t *testing.T) {
	b := New[doc]("somewhere").
		Manual().
		RejectForeign().
		SkipUndecodable().
		WithCodec(YAML).
		WithFingerprint(FpBlake2b).
		WithScanWorkers(2).
		WithLogger(slog.Default())

	c := b.config
	if c.Policy.Permission != WriteManual {
		t.Errorf("Permission = %v, want WriteManual", c.Policy.Permission)
	}
	if c.Policy.Extensions != RejectForeign {
		t.Errorf("Extensions = %v, want RejectForeign", c.Policy.Extensions)
	}
	if c.Policy.DecodeErrors != SkipUndecodable {
		t.Errorf("DecodeErrors = %v, want SkipUndecodable", c.Policy.DecodeErrors)
	}
	if c.Codec != YAML {
		t.Error("codec not set")
	}
	if c.Fingerprint != FpBlake2b || c.ScanWorkers != 2 || c.Logger == nil {
		t.Error("options not threaded through")
	}
}

func TestBuilderCreateReadOnly(t *testing.T) {
	_, err := New[doc](filepath.Join(t.TempDir(), "table")).ReadOnly().Create()
	if !errors.Is(err, ErrCreateReadOnly) {
		t.Errorf("got %v, want ErrCreateReadOnly", err)
	}
}

func TestBuilderLoad(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "a.json", `{"name":"alpha"}`)
	writeRecord(t, dir, "noise.txt", "x")

	tb, err := New[doc](dir).ReadOnly().SkipForeign().Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer tb.Close()
	if tb.Len() != 1 {
		t.Errorf("Len = %d, want 1", tb.Len())
	}
	if tb.Writable() {
		t.Error("read-only table reports writable")
	}
}

func TestBuilderIgnoreExtensions(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, "a.json", `{"name":"alpha"}`)
	writeRecord(t, dir, "b.txt", `{"name":"beta"}`)

	tb, err := New[doc](dir).ReadOnly().IgnoreExtensions().Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer tb.Close()
	if tb.Len() != 2 {
		t.Errorf("Len = %d, want 2", tb.Len())
	}
}

func TestBuilderAutoOverridesManual(t *testing.T) {
	b := New[doc]("somewhere").Manual().Auto()
	if b.config.Policy.Permission != WriteAutomatic {
		t.Errorf("Permission = %v, want WriteAutomatic", b.config.Policy.Permission)
	}
}
