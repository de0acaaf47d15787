package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Live serves the latest successfully parsed version of a dictionary file.
// A background watcher reloads the file after changes settle; a failed reload
// keeps the previous snapshot. Snapshots are swapped atomically, never
// mutated.
type Live struct {
	path         string
	current      atomic.Pointer[Store]
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	logger       *log.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewLive loads path and prepares a watcher on its directory. The initial
// load must succeed. Call Start to begin watching.
func NewLive(path string, logger *log.Logger) (*Live, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	initial, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create dictionary watcher: %w", err)
	}
	// Watch the directory: editors often replace files by rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	l := &Live{
		path:         path,
		watcher:      watcher,
		debounceTime: 200 * time.Millisecond,
		logger:       logger,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	l.current.Store(initial)
	return l, nil
}

// Load returns the current snapshot.
func (l *Live) Load() (*Store, error) {
	return l.current.Load(), nil
}

// Reload parses the file now and installs the result on success.
func (l *Live) Reload() error {
	s, err := LoadFile(l.path)
	if err != nil {
		return err
	}
	l.current.Store(s)
	return nil
}

// Start begins watching for changes.
func (l *Live) Start(ctx context.Context) {
	go l.watch(ctx)
}

// Stop stops the watcher. Safe to call more than once, and before Start.
// After Start, Done is closed once the loop has exited.
func (l *Live) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.watcher.Close()
	})
}

// Done is closed once the watch loop has exited.
func (l *Live) Done() <-chan struct{} {
	return l.doneCh
}

func (l *Live) watch(ctx context.Context) {
	defer close(l.doneCh)

	var debounceTimer *time.Timer
	reloadCh := make(chan struct{}, 1)
	target := filepath.Clean(l.path)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-l.stopCh:
			stopTimer()
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				stopTimer()
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			stopTimer()
			debounceTimer = time.AfterFunc(l.debounceTime, func() {
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			})

		case <-reloadCh:
			start := time.Now()
			if err := l.Reload(); err != nil {
				l.logger.Warn("dictionary reload failed, keeping previous version", "path", l.path, "err", err)
				continue
			}
			l.logger.Info("dictionary reloaded", "path", l.path, "commands", l.current.Load().Len(), "took", time.Since(start))

		case err, ok := <-l.watcher.Errors:
			if !ok {
				stopTimer()
				return
			}
			l.logger.Error("dictionary watcher error", "err", err)
		}
	}
}
