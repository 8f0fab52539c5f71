package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/pysentry/pkg/config"
	"github.com/panbanda/pysentry/pkg/parser"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the source files that changed in one debounce
// window, sorted by path.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher monitors a directory tree for changes to Python sources.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	logger    *zap.Logger
	debounce  time.Duration
	root      string
	onChange  ChangeFunc

	mu      sync.Mutex
	pending map[string]time.Time
	runMu   sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher rooted at root.
func NewWatcher(root string, cfg *config.Config, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		logger:    zap.NewNop(),
		debounce:  DefaultDebounce,
		root:      root,
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// OnChange sets the function called for each batch of changed files.
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.onChange = fn
}

// Start watches until ctx is cancelled or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("watching for changes", zap.String("root", w.root), zap.Int("dirs", len(w.fsWatcher.WatchList())))

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// addTree watches root and every non-excluded directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && slices.Contains(w.config.Exclude.Dirs, info.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !slices.Contains(w.config.Exclude.Dirs, info.Name()) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("cannot watch directory", zap.String("path", path), zap.Error(err))
				}
			}
			return
		}
	}

	if w.config.ShouldExclude(path) || !parser.IsSource(path, w.config.Analysis.Extensions...) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ready := w.takeReady(time.Now()); len(ready) > 0 && w.onChange != nil {
				go w.run(ctx, ready)
			}
		}
	}
}

// takeReady removes and returns the files quiet for at least the debounce
// period as of now.
func (w *Watcher) takeReady(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	slices.Sort(ready)
	return ready
}

// run invokes the change handler; batches never overlap.
func (w *Watcher) run(ctx context.Context, paths []string) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.logger.Debug("files changed", zap.Strings("paths", paths))
	w.onChange(ctx, paths)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories being watched.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
