// Package assets holds the cover-page logo and keeps it in sync with the
// file on disk.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/metrics"
)

// Store serves the current logo bytes. A Store with no path, or whose file
// is missing, serves nil and documents are rendered without a logo.
type Store struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	data []byte

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
}

// Load reads the logo at path. A missing file is not an error.
func Load(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{logger: logger.Named("assets")}
	if path == "" {
		return s, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	s.path = absPath

	if err := s.reload(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if s.Logo() == nil {
		s.logger.Warn("logo not found, documents will have no logo", zap.String("path", absPath))
	}
	return s, nil
}

// Path returns the absolute logo path, or "" when none is configured.
func (s *Store) Path() string {
	return s.path
}

// Logo returns the current logo bytes, or nil.
func (s *Store) Logo() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.set(nil)
		}
		return err
	}
	s.set(data)
	return nil
}

func (s *Store) set(data []byte) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// Watch reloads the logo whenever its file is written, created or removed.
// It returns once the watcher is running; Stop or ctx cancellation ends it.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory so replacing the file is noticed.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx, watcher, s.done)
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.watcher == nil || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.done)
	s.watcher.Close()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Store) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (s *Store) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != s.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	err := s.reload()
	switch {
	case err == nil:
		s.logger.Info("logo reloaded", zap.String("path", s.path), zap.Int("bytes", len(s.Logo())))
	case os.IsNotExist(err):
		s.logger.Warn("logo removed", zap.String("path", s.path))
	default:
		s.logger.Warn("logo reload failed", zap.String("path", s.path), zap.Error(err))
	}
	metrics.AssetReloads.WithLabelValues(metrics.Result(err)).Inc()
}
