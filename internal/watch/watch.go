// Package watch turns audio files dropped into a directory into batches.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/pipeline"
)

const DefaultQuietPeriod = 2 * time.Second

// BatchFunc handles one batch of new files. It runs on the watch goroutine,
// so events arriving meanwhile are held until it returns.
type BatchFunc func(ctx context.Context, files []string)

type Watcher struct {
	dir       string
	supported func(string) bool
	ignore    map[string]bool
	quiet     time.Duration
	logger    *zap.Logger
}

type Option func(*Watcher)

// WithQuietPeriod sets how long the directory must stay unchanged before
// pending files are handed over. Copies in progress keep resetting it.
func WithQuietPeriod(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// WithIgnore skips the given paths, such as scratch files created in dir.
func WithIgnore(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			w.ignore[filepath.Clean(p)] = true
		}
	}
}

func New(dir string, extensions []string, logger *zap.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		dir:       filepath.Clean(dir),
		supported: pipeline.ExtensionFilter(extensions),
		ignore:    make(map[string]bool),
		quiet:     DefaultQuietPeriod,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches dir until ctx is done.
func (w *Watcher) Run(ctx context.Context, batch BatchFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for audio files", zap.String("dir", w.dir), zap.Duration("quiet_period", w.quiet))

	pending := make(map[string]bool)
	timer := time.NewTimer(w.quiet)
	timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.accept(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.quiet)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			clear(pending)
			slices.Sort(files)

			w.logger.Info("new audio files", zap.Strings("files", files))
			batch(ctx, files)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.ignore[name] || !w.supported(name) {
		return false
	}
	return filepath.Base(name)[0] != '.'
}
