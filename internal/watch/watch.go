// Package watch reports when files under a vault stop changing.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/gorewood/vault/internal/git"
	"github.com/gorewood/vault/internal/log"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 600 * time.Millisecond

// Watcher watches every directory of a vault except the git directory.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *charmlog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	paths   map[string]struct{}
}

// New creates a watcher rooted at root. It does not watch anything until Run.
func New(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		watcher:  fsw,
		paths:    make(map[string]struct{}),
	}, nil
}

// Run calls onChange once the tree has been quiet for the debounce window
// after one or more changes. It returns when ctx is done. Errors from
// onChange are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	w.logger = log.FromContext(ctx)
	defer w.watcher.Close() //nolint:errcheck // shutdown

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Debug("watching vault", "root", w.root, "dirs", w.Len(), "debounce", w.debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.maybeWatchNewDir(event.Name)
			}
			w.logger.Debug("change", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("change handler failed", "root", w.root, "err", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// Len returns the number of watched directories.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return !w.inGitDir(event.Name)
}

func (w *Watcher) inGitDir(path string) bool {
	gitDir := filepath.Join(w.root, git.MarkerDir)
	return path == gitDir || strings.HasPrefix(path, gitDir+string(filepath.Separator))
}

func (w *Watcher) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new dir failed", "path", path, "err", err)
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.inGitDir(path) {
			return filepath.SkipDir
		}
		w.addDir(path)
		return nil
	})
}

func (w *Watcher) addDir(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		if w.logger != nil {
			w.logger.Debug("watch add failed", "path", path, "err", err)
		}
		return
	}
	w.paths[path] = struct{}{}
}
