// Package watch triggers work when crawled content changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period used when New receives zero.
const DefaultDebounce = 2 * time.Second

// Watcher reports bursts of file-system changes under a set of targets as a
// single callback. A target directory matches any file directly inside it;
// a target file matches only itself.
type Watcher struct {
	fs       *fsnotify.Watcher
	dirs     map[string]bool
	files    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
}

// New starts watching targets. Every target must exist.
func New(targets []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{fs: fw, dirs: map[string]bool{}, files: map[string]bool{}, debounce: debounce, logger: logger}
	for _, t := range targets {
		if err := w.add(t); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", target, err)
	}
	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(ev.Name)
	return w.files[name] || w.dirs[filepath.Dir(name)]
}

// Run blocks until ctx is done, calling onChange once per burst of relevant
// events after the debounce period has passed without new ones. An onChange
// error is logged and watching continues. Run closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change observed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.logger.Error("change handler failed", zap.Error(err))
			}
		}
	}
}
