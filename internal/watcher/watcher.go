// Package watcher reports changes to the inputs of a check so it can be
// re-run: stub directories, the reflection dump and suppression files.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directory trees filtered by extension, plus single files.
type Watcher struct {
	fsw        *fsnotify.Watcher
	dirs       []string        // cleaned tree roots
	files      map[string]bool // cleaned single-file paths
	extensions map[string]bool // monitored extensions inside trees (.php)
	debounce   time.Duration
	logger     *slog.Logger

	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	timer         *time.Timer
	timerMu       sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New watches dirs recursively for files with the given extensions, and
// files individually. Files are watched through their parent directory so
// that editors replacing a file are noticed.
func New(dirs, files, extensions []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fsw:         fsw,
		files:       make(map[string]bool, len(files)),
		extensions:  make(map[string]bool, len(extensions)),
		debounce:    DefaultDebounce,
		logger:      slog.New(slog.DiscardHandler),
		accumulated: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, ext := range extensions {
		w.extensions[ext] = true
	}

	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		w.dirs = append(w.dirs, dir)
		if err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	for _, file := range files {
		file = filepath.Clean(file)
		w.files[file] = true
		if err := fsw.Add(filepath.Dir(file)); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", file, err)
		}
	}
	return w, nil
}

// Run calls onChange with the sorted changed paths after each quiet period,
// until ctx is done. onChange runs on the watch goroutine; changes that
// arrive meanwhile are reported in the next batch.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	defer w.stopTimer()

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 && w.inTree(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if !w.relevant(event) {
				continue
			}

			w.accumulatedMu.Lock()
			w.accumulated[filepath.Clean(event.Name)] = true
			w.accumulatedMu.Unlock()
			w.resetTimer(fire)

		case <-fire:
			if changed := w.drain(); len(changed) > 0 {
				w.logger.Debug("inputs changed", "files", len(changed))
				onChange(changed)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) drain() []string {
	w.accumulatedMu.Lock()
	defer w.accumulatedMu.Unlock()

	changed := make([]string, 0, len(w.accumulated))
	for path := range w.accumulated {
		changed = append(changed, path)
	}
	w.accumulated = make(map[string]bool)
	sort.Strings(changed)
	return changed
}

func (w *Watcher) resetTimer(fire chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// relevant reports whether event touches a watched file or a monitored
// file inside a watched tree.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	return w.inTree(name) && w.extensions[filepath.Ext(name)]
}

func (w *Watcher) inTree(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree adds root and every directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			w.logger.Warn("error accessing directory", "path", path, "error", err)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
