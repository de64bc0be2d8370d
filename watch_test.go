package binder

import (
	"context"
	"errors"
	"testing"
	"time"
)

// watchTable starts Watch on a fresh table with a short debounce and
// returns the table, a channel of reported keys, and a cancel that
// waits for Watch to return.
func watchTable(t *testing.T) (*Table[doc], <-chan string, func()) {
	t.Helper()
	tb := newTestTable(t)
	tb.config.WatchDebounce = 10 * time.Millisecond

	keys := make(chan string, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tb.Watch(ctx, func(key string) { keys <- key })
	}()
	// Give the watcher time to register before the test writes files.
	time.Sleep(50 * time.Millisecond)

	stop := func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch returned %v", err)
		}
	}
	return tb, keys, stop
}

func waitForKey(t *testing.T, keys <-chan string) string {
	t.Helper()
	select {
	case key := <-keys:
		return key
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return ""
	}
}

func TestWatchReportsExternalCreate(t *testing.T) {
	tb, keys, stop := watchTable(t)
	defer stop()

	writeRecord(t, tb.Dir(), "incoming.json", `{"name":"new"}`)

	if key := waitForKey(t, keys); key != "incoming" {
		t.Errorf("key = %q, want incoming", key)
	}
}

func TestWatchIgnoresForeignAndSoftDelete(t *testing.T) {
	tb, keys, stop := watchTable(t)
	defer stop()

	writeRecord(t, tb.Dir(), "noise.txt", "x")
	writeRecord(t, tb.Dir(), "gone.json_soft_delete", "x")
	writeRecord(t, tb.Dir(), "real.json", `{}`)

	if key := waitForKey(t, keys); key != "real" {
		t.Errorf("key = %q, want real", key)
	}
	select {
	case key := <-keys:
		t.Errorf("unexpected extra key %q", key)
	case <-time.After(100 * time.Millisecond):
	}
}

// Rapid edits to one file inside the debounce window collapse into a
// single notification.
func TestWatchDebouncesBursts(t *testing.T) {
	tb, keys, stop := watchTable(t)
	defer stop()

	for range 5 {
		writeRecord(t, tb.Dir(), "busy.json", `{}`)
	}

	if key := waitForKey(t, keys); key != "busy" {
		t.Errorf("key = %q, want busy", key)
	}
	select {
	case key := <-keys:
		t.Errorf("burst produced extra notification %q", key)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchClosed(t *testing.T) {
	tb := newTestTable(t)
	tb.Close()

	err := tb.Watch(context.Background(), func(string) {})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	tb := newTestTable(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tb.Watch(ctx, func(string) {})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
