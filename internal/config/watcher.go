package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher errors.
var (
	ErrMissingConfigFile = errors.New("config file path is required")
	ErrMissingOnChange   = errors.New("onChange callback is required")
)

// ConfigWatcher watches a config file for changes and triggers reload.
// A ConfigWatcher is started and stopped once.
type ConfigWatcher struct {
	filePath   string
	debounce   time.Duration
	lastConfig *Config
	onChange   func(oldCfg, newCfg *Config)
	onError    func(err error)
	fsw        *fsnotify.Watcher
	stopCh     chan struct{}
	stoppedCh  chan struct{}
	mu         sync.Mutex
	running    bool
	closed     bool
}

// WatcherConfig holds config watcher configuration.
type WatcherConfig struct {
	FilePath string
	Debounce time.Duration // Default: 200ms
	OnChange func(oldCfg, newCfg *Config)
	// OnError is called when a changed file fails to load or validate.
	// The previous configuration stays current.
	OnError func(err error)
}

// NewConfigWatcher loads the file once and prepares to watch it.
// The file's directory is watched rather than the file itself so editors
// that replace the file on save are still seen.
func NewConfigWatcher(cfg *WatcherConfig) (*ConfigWatcher, error) {
	if cfg.FilePath == "" {
		return nil, ErrMissingConfigFile
	}
	if cfg.OnChange == nil {
		return nil, ErrMissingOnChange
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	path, err := filepath.Abs(cfg.FilePath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	initialConfig, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	onError := cfg.OnError
	if onError == nil {
		onError = func(error) {}
	}

	return &ConfigWatcher{
		filePath:   path,
		debounce:   debounce,
		lastConfig: initialConfig,
		onChange:   cfg.OnChange,
		onError:    onError,
		fsw:        fsw,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}, nil
}

// Start begins watching the config file for changes.
func (w *ConfigWatcher) Start() {
	w.mu.Lock()
	if w.running || w.closed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.watchLoop()
}

// Stop stops watching and releases the underlying file watcher.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.closed = true
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.stoppedCh
	}
	w.fsw.Close()
}

func (w *ConfigWatcher) watchLoop() {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(w.debounce)
			debounceCh = debounceTimer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)

		case <-debounceCh:
			debounceTimer = nil
			debounceCh = nil
			w.triggerReload()
		}
	}
}

func (w *ConfigWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.filePath {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// triggerReload loads the new config and calls onChange.
func (w *ConfigWatcher) triggerReload() {
	newConfig, err := Load(w.filePath)
	if err != nil {
		w.onError(err)
		return
	}

	w.mu.Lock()
	oldConfig := w.lastConfig
	w.lastConfig = newConfig
	w.mu.Unlock()

	w.onChange(oldConfig, newConfig)
}

// IsRunning returns true if the watcher is running.
func (w *ConfigWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// GetCurrentConfig returns the last loaded config.
func (w *ConfigWatcher) GetCurrentConfig() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastConfig
}
