package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one media file dropped into the watched directory.
type Handler func(ctx context.Context, path string) error

// Watcher submits a pipeline job for every media file created in a
// directory, with bounded concurrency.
type Watcher struct {
	dir           string
	handler       Handler
	maxConcurrent int
	settleDelay   time.Duration
	logf          func(format string, args ...any)
}

func New(dir string, maxConcurrent int, logf func(string, ...any), handler Handler) *Watcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Watcher{
		dir:           dir,
		handler:       handler,
		maxConcurrent: maxConcurrent,
		settleDelay:   500 * time.Millisecond,
		logf:          logf,
	}
}

// Run watches the directory until the context is cancelled, then waits for
// in-flight handlers to finish.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logf("watching %s (max concurrent: %d)", w.dir, w.maxConcurrent)

	sem := make(chan struct{}, w.maxConcurrent)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			w.logf("waiting for in-flight jobs")
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) || !IsMediaFile(event.Name) {
				continue
			}
			w.logf("new media detected: %s", event.Name)

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				defer func() { <-sem }()

				// Give the writer a moment to finish the file.
				select {
				case <-time.After(w.settleDelay):
				case <-ctx.Done():
					return
				}
				if err := w.handler(ctx, path); err != nil {
					w.logf("failed to process %s: %v", path, err)
				}
			}(event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logf("watcher error: %v", err)
		}
	}
}

// IsMediaFile reports whether the path has a supported media extension.
func IsMediaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv", ".webm", ".m4v", ".avi", ".mp3", ".wav", ".m4a", ".flac", ".ogg":
		return true
	default:
		return false
	}
}
