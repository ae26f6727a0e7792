package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ignoredDirs never get watched; they mirror the crawler's skip list.
var ignoredDirs = []string{".git", ".godot", ".mono", ".vs", "bin", "obj"}

// Watcher triggers a rebuild callback when C# sources under the root change.
// Bursts of events are debounced into one trigger, and triggers are handed
// to the callback one at a time: a change arriving mid-rebuild folds into
// the next one.
type Watcher struct {
	root     string
	skip     string
	debounce time.Duration
	log      *zap.SugaredLogger
	onChange func()

	fsw     *fsnotify.Watcher
	pending chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher over root. Events below skip (the output root) are
// ignored so generated headers never retrigger a build. Both paths are
// resolved against the working directory up front: fsnotify reports event
// names rooted at the registered watch paths, and the skip comparison only
// holds when the two share one base.
func New(root, skip string, debounce time.Duration, log *zap.SugaredLogger, onChange func()) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve watch root %s", root)
	}
	absSkip := ""
	if skip != "" {
		if absSkip, err = filepath.Abs(skip); err != nil {
			return nil, errors.Wrapf(err, "failed to resolve output dir %s", skip)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	w := &Watcher{
		root:     absRoot,
		skip:     absSkip,
		debounce: debounce,
		log:      log,
		onChange: onChange,
		fsw:      fsw,
		pending:  make(chan struct{}, 1),
	}
	if err := w.addRecursive(absRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until the context is cancelled. Cancellation is the
// normal shutdown path and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil

		case <-w.pending:
			w.onChange()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if within(event.Name, w.skip) {
		return
	}

	// fsnotify does not recurse; directories must be registered as they
	// appear. Files may land in a new directory before the watch is in
	// place, so a new directory schedules a rebuild by itself.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warnw("failed to watch new directory", "dir", event.Name, "error", err)
			}
			w.schedule()
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".cs") {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debugw("source change", "file", event.Name, "op", event.Op.String())
	w.schedule()
}

// schedule debounces rapid event bursts into a single pending trigger.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.pending <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		for _, ign := range ignoredDirs {
			if d.Name() == ign {
				return filepath.SkipDir
			}
		}
		if within(path, w.skip) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

// within reports whether path sits at or below root, comparing lexically.
func within(path, root string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
