package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smith-xyz/golang-component-map/pkg/config"
	"github.com/smith-xyz/golang-component-map/pkg/models"
	"github.com/smith-xyz/golang-component-map/pkg/utils"
)

// DefaultDebounce is used when the configured debounce window is zero.
const DefaultDebounce = 300 * time.Millisecond

// Refresher rebuilds the graph; *graph.Store satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*models.Graph, error)
}

// RefreshFunc is called after every triggered refresh. g is nil when err is not.
type RefreshFunc func(g *models.Graph, err error)

// Watcher triggers a full graph refresh when files under a root change.
// Bursts of changes inside the debounce window cause a single refresh.
type Watcher struct {
	logger     *slog.Logger
	root       string
	fsw        *fsnotify.Watcher
	refresher  Refresher
	debounce   time.Duration
	ignore     []string
	extensions []string
	onRefresh  RefreshFunc
}

// NewWatcher creates a new watcher over every directory below root that is
// not ignored. Only files whose name ends in one of extensions trigger a
// refresh; no extensions means every file does.
func NewWatcher(logger *slog.Logger, root string, refresher Refresher, cfg config.WatchConfig, extensions ...string) (*Watcher, error) {
	if logger == nil {
		logger = utils.DiscardLogger()
	}

	if !utils.DirectoryExists(root) {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		logger:     logger,
		root:       root,
		fsw:        fsw,
		refresher:  refresher,
		debounce:   time.Duration(cfg.DebounceMillis) * time.Millisecond,
		ignore:     cfg.IgnorePatterns,
		extensions: extensions,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return w, nil
}

// OnRefresh sets the callback run after each refresh.
func (w *Watcher) OnRefresh(fn RefreshFunc) {
	w.onRefresh = fn
}

// Run processes file events until ctx is cancelled. The underlying watcher is
// closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := 0

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.shouldIgnore(event.Name) {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.relevant(event.Name) || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			pending++
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			w.logger.Debug("Refreshing after file changes", "changes", pending)
			pending = 0
			w.refresh(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	g, err := w.refresher.Refresh(ctx)
	if err != nil {
		w.logger.Warn("Graph refresh failed", "error", err)
	}
	if w.onRefresh != nil {
		w.onRefresh(g, err)
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// shouldIgnore reports whether any element of path relative to the root
// matches an ignore pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && utils.MatchesAnyPattern(part, w.ignore) {
			return true
		}
	}
	return false
}

func (w *Watcher) relevant(path string) bool {
	if w.shouldIgnore(path) {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, ext := range w.extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}
