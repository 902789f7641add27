// Package watcher reloads files that an operator edits while the server
// runs, such as the generation system prompt.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kataras/golog"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the watched file settles. A returned error
// is logged and watching continues.
type ReloadFunc func() error

// Watcher watches a single file for changes
type Watcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	log      *golog.Logger
}

// New creates a new file watcher
func New(path string, reload ReloadFunc) *Watcher {
	return &Watcher{
		path:     path,
		reload:   reload,
		debounce: DefaultDebounce,
		log:      golog.Default,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// WithLogger sets the logger
func (w *Watcher) WithLogger(l *golog.Logger) *Watcher {
	w.log = l
	return w
}

// Watch blocks until ctx is cancelled, calling the reload function after
// each settled write, create or rename onto the file.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch the directory so editors that replace the file are seen
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.log.Infof("watcher: watching %s for changes", abs)

	// Single timer owned by this goroutine; fired ticks arrive on settled
	settled := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case settled <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case <-settled:
			if err := w.reload(); err != nil {
				w.log.Warnf("watcher: reload of %s failed: %v", abs, err)
				continue
			}
			w.log.Infof("watcher: reloaded %s", abs)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("watcher: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
