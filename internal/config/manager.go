package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Manager holds the current configuration and reloads it when the file
// changes on disk. An invalid edit is logged and the previous config kept.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	wg       sync.WaitGroup
	onChange func(*Config)
}

func NewManager(path string, logger *zap.Logger) (*Manager, error) {
	config, err := LoadFile(path)
	if err != nil {
		logger.Error("failed to load initial configuration", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	if err := config.Validate(); err != nil {
		logger.Warn("configuration validation warning", zap.Error(err))
	}

	return &Manager{
		config: config,
		path:   path,
		logger: logger,
	}, nil
}

// OnChange registers fn to run after every successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// editors replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	m.logger.Info("watching config for changes", zap.String("path", m.path))
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				m.logger.Debug("config file changed", zap.String("event", event.Op.String()))
				m.reloadConfig()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("config watcher error", zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	newConfig, err := LoadFile(m.path)
	if err != nil {
		m.logger.Warn("failed to reload config", zap.Error(err))
		return
	}
	if err := newConfig.Validate(); err != nil {
		m.logger.Warn("invalid config after reload, keeping previous", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.config = newConfig
	onChange := m.onChange
	m.mu.Unlock()

	m.logger.Info("configuration reloaded")
	if onChange != nil {
		onChange(newConfig)
	}
}
