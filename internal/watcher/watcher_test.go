package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kataras/golog"

	"qompath/internal/llm"
)

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give fsnotify time to register the directory
	time.Sleep(100 * time.Millisecond)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func quietLogger() *golog.Logger {
	return golog.New().SetLevel("disable")
}

func TestReloadsSystemPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}

	prompt := llm.NewSystemPrompt(path)
	if err := prompt.Reload(); err != nil {
		t.Fatal(err)
	}

	startWatcher(t, New(path, prompt.Reload).WithDebounce(20*time.Millisecond).WithLogger(quietLogger()))

	if err := os.WriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return prompt.Text() == "second" })
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.md")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, New(path, func() error {
		calls.Add(1)
		return nil
	}).WithDebounce(20*time.Millisecond).WithLogger(quietLogger()))

	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("expected no reloads, got %d", n)
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("0"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, New(path, func() error {
		calls.Add(1)
		return nil
	}).WithDebounce(150*time.Millisecond).WithLogger(quietLogger()))

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 reload, got %d", n)
	}
}

func TestReloadErrorKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("0"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, New(path, func() error {
		calls.Add(1)
		return errors.New("bad file")
	}).WithDebounce(20*time.Millisecond).WithLogger(quietLogger()))

	os.WriteFile(path, []byte("1"), 0644)
	waitFor(t, func() bool { return calls.Load() == 1 })

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(path, []byte("2"), 0644)
	waitFor(t, func() bool { return calls.Load() >= 2 })
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "prompt.md"), func() error { return nil })
	if err := w.Watch(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
