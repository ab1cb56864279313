// Package workspace owns the scratch directories and files shared between
// pipeline stages.
//
// A workspace root must not be used by two runs at the same time. Nothing
// enforces this; Release at the start of a run will delete another run's
// in-flight segments.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/leonardotrapani/chunkscribe/internal/retry"
)

const (
	defaultSegmentDir    = "audio_chunks"
	defaultFragmentDir   = "trans_chunks"
	defaultTranscripts   = "transcripts"
	defaultConvertedFile = "converted.mp3"
)

// Layout names every path the pipeline touches under a root directory.
// TranscriptsDir is persistent; the rest is scratch.
type Layout struct {
	SegmentDir     string
	FragmentDir    string
	ConvertedFile  string
	TranscriptsDir string
}

// NewLayout returns the default layout under root. An empty transcriptsDir
// places transcripts under root as well.
func NewLayout(root, transcriptsDir string) Layout {
	if transcriptsDir == "" {
		transcriptsDir = filepath.Join(root, defaultTranscripts)
	}
	return Layout{
		SegmentDir:     filepath.Join(root, defaultSegmentDir),
		FragmentDir:    filepath.Join(root, defaultFragmentDir),
		ConvertedFile:  filepath.Join(root, defaultConvertedFile),
		TranscriptsDir: transcriptsDir,
	}
}

// ScratchDirs returns the directories Release clears.
func (l Layout) ScratchDirs() []string {
	return []string{l.SegmentDir, l.FragmentDir}
}

type fileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
	Remove(name string) error
	RemoveAll(path string) error
	Stat(name string) (os.FileInfo, error)
}

type osFileSystem struct{}

func (osFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (osFileSystem) ReadDir(name string) ([]os.DirEntry, error)  { return os.ReadDir(name) }
func (osFileSystem) Remove(name string) error                    { return os.Remove(name) }
func (osFileSystem) RemoveAll(path string) error                 { return os.RemoveAll(path) }
func (osFileSystem) Stat(name string) (os.FileInfo, error)       { return os.Stat(name) }

// Manager creates and tears down the scratch area described by a Layout.
type Manager struct {
	layout Layout
	policy retry.Policy
	fs     fileSystem
	logger *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRetryPolicy overrides the cleanup retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

func withFileSystem(fs fileSystem) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

func NewManager(layout Layout, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		layout: layout,
		policy: retry.DefaultPolicy(),
		fs:     osFileSystem{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Layout() Layout {
	return m.layout
}

// Ensure creates each directory if it does not exist yet.
func (m *Manager) Ensure(dirs ...string) error {
	for _, dir := range dirs {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureAll creates the scratch directories and the transcripts directory.
func (m *Manager) EnsureAll() error {
	return m.Ensure(append(m.layout.ScratchDirs(), m.layout.TranscriptsDir)...)
}

// CleanupError lists every path Release could not delete.
type CleanupError struct {
	Failures []PathError
}

// PathError is one path that survived Release.
type PathError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Path, f.Err))
	}
	return "workspace cleanup incomplete: " + strings.Join(parts, "; ")
}

func (e *CleanupError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// ErrDirNotEmpty is reported when a scratch directory still has entries after
// its files were deleted (for example a file created concurrently).
var ErrDirNotEmpty = errors.New("directory not empty")

// Release deletes the files in every scratch directory, then the directories,
// then the converted-audio file. Missing paths are already clean. Failures
// are collected into a *CleanupError and never abort the remaining deletions.
func (m *Manager) Release(ctx context.Context) error {
	var failures []PathError

	for _, dir := range m.layout.ScratchDirs() {
		failures = append(failures, m.releaseDir(ctx, dir)...)
	}

	if err := m.remove(ctx, m.layout.ConvertedFile); err != nil {
		failures = append(failures, PathError{Path: m.layout.ConvertedFile, Err: err})
	}

	if len(failures) > 0 {
		for _, f := range failures {
			m.logger.Warn("cleanup failed", zap.String("path", f.Path), zap.Error(f.Err))
		}
		return &CleanupError{Failures: failures}
	}

	m.logger.Debug("workspace released")
	return nil
}

func (m *Manager) releaseDir(ctx context.Context, dir string) []PathError {
	entries, err := m.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return []PathError{{Path: dir, Err: err}}
	}

	var failures []PathError
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		var err error
		if entry.IsDir() {
			err = retry.Do(ctx, m.policy, func() error { return m.fs.RemoveAll(path) })
		} else {
			err = m.remove(ctx, path)
		}
		if err != nil {
			failures = append(failures, PathError{Path: path, Err: err})
		}
	}

	err = retry.Do(ctx, m.policy, func() error {
		err := m.fs.Remove(dir)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return err
		}
		if left, rerr := m.fs.ReadDir(dir); rerr == nil && len(left) > 0 {
			return retry.Permanent(fmt.Errorf("%w: %d entries left", ErrDirNotEmpty, len(left)))
		}
		return err
	})
	if err != nil {
		failures = append(failures, PathError{Path: dir, Err: err})
	}

	return failures
}

func (m *Manager) remove(ctx context.Context, path string) error {
	return retry.Do(ctx, m.policy, func() error { return m.fs.Remove(path) })
}

// Materialized returns the scratch paths that currently exist. It is empty
// before a run starts and after Release succeeds.
func (m *Manager) Materialized() []string {
	var paths []string
	for _, p := range append(m.layout.ScratchDirs(), m.layout.ConvertedFile) {
		if _, err := m.fs.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}
