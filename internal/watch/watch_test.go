package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCoalescesChanges(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan struct{}, 10)

	w, err := New(func() { changes <- struct{}{} }, []string{dir}, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := range 5 {
		name := filepath.Join(dir, "post.md")
		if err := os.WriteFile(name, []byte{byte('a' + i)}, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change callback")
	}

	select {
	case <-changes:
		t.Error("burst produced more than one callback")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestWatcherFilePathWatchesParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gallery.json")
	if err := os.WriteFile(file, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := New(func() {}, []string{file})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestWatcherMissingPath(t *testing.T) {
	if _, err := New(func() {}, []string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error")
	}
}
