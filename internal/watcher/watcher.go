package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"meetsum/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

var supportedFormats = []string{".mp3", ".wav", ".m4a"}

type implWatcher struct {
	inputDir       string
	handler        EventHandler
	logger         logger.Logger
	watcher        *fsnotify.Watcher
	maxConcurrent  int
	semaphore      chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	inFlight       map[string]struct{}
	settleInterval time.Duration
	settleTimeout  time.Duration
}

// Start monitors the inbox until ctx is cancelled, then waits for
// running handlers to finish.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(supportedFormats, ", "))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing runs to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isAudioFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}
			if !w.claim(event.Name) {
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)

			select {
			case w.semaphore <- struct{}{}:
			case <-ctx.Done():
				w.release(event.Name)
				continue
			}

			w.wg.Add(1)
			go func(filePath string) {
				defer w.wg.Done()
				defer func() { <-w.semaphore }()
				defer w.release(filePath)

				if err := w.waitStable(ctx, filePath); err != nil {
					w.logger.Error(ctx, "File %s never settled: %v", filePath, err)
					return
				}
				if err := w.handler(ctx, filePath); err != nil {
					w.logger.Error(ctx, "Failed to process %s: %v", filePath, err)
				}
			}(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// waitStable blocks until two consecutive size readings match and are non-zero.
// Files copied into the inbox by other programs give no completion signal.
func (w *implWatcher) waitStable(ctx context.Context, path string) error {
	deadline := time.Now().Add(w.settleTimeout)
	last := int64(-1)

	ticker := time.NewTicker(w.settleInterval)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		size := info.Size()
		if size > 0 && size == last {
			return nil
		}
		last = size

		if time.Now().After(deadline) {
			return fmt.Errorf("size still changing after %v", w.settleTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[path]; busy {
		return false
	}
	w.inFlight[path] = struct{}{}
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}

// isAudioFile checks if the file has a supported audio extension
func isAudioFile(path string) bool {
	return lo.Contains(supportedFormats, strings.ToLower(filepath.Ext(path)))
}
