package watcher

import (
	"fmt"
	"time"

	"meetsum/internal/logger"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultSettleInterval = 250 * time.Millisecond
	defaultSettleTimeout  = 2 * time.Minute
)

// New creates a Watcher on inputDir that runs at most maxConcurrent handlers at once
func New(inputDir string, handler EventHandler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	return newWatcher(inputDir, handler, log, maxConcurrent)
}

func newWatcher(inputDir string, handler EventHandler, log logger.Logger, maxConcurrent int) (*implWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(inputDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &implWatcher{
		inputDir:       inputDir,
		handler:        handler,
		logger:         log,
		watcher:        fw,
		maxConcurrent:  maxConcurrent,
		semaphore:      make(chan struct{}, maxConcurrent),
		inFlight:       make(map[string]struct{}),
		settleInterval: defaultSettleInterval,
		settleTimeout:  defaultSettleTimeout,
	}, nil
}
