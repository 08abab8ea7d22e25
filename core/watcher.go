package core

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher calls onChange once a burst of filesystem events under dirs settles.
type Watcher struct {
	dirs     []string
	onChange func()
	logger   *zap.Logger
	debounce time.Duration
}

func NewWatcher(logger *zap.Logger, onChange func(), dirs ...string) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dirs:     dirs,
		onChange: onChange,
		logger:   logger.Named("watcher"),
		debounce: defaultDebounce,
	}
}

// Run blocks until ctx is done or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := addTree(fw, dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Info("watching for changes", zap.Strings("dirs", w.dirs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addTree(fw, ev.Name)
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			pending = time.After(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-pending:
			pending = nil
			w.onChange()
		}
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
