// Package runner executes generation once or repeatedly as model files
// change.
package runner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kishek/ts-model-toolkit/internal/discover"
)

// Func is one generation run.
type Func func(ctx context.Context) error

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Options configures Watch.
type Options struct {
	// Dirs are watched recursively.
	Dirs []string

	// Ignore lists directories whose changes never trigger a run, such as
	// the output directory.
	Ignore []string

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Match selects the files that trigger a run. Defaults to
	// discover.IsModelFile.
	Match func(path string) bool

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *Options) defaults() {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Match == nil {
		o.Match = discover.IsModelFile
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Run executes fn once, logging its duration.
func Run(ctx context.Context, logger *zap.Logger, fn Func) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	if err := fn(ctx); err != nil {
		return err
	}
	logger.Info("generation complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Watch runs fn, then runs it again after every burst of changes to
// matching files until ctx is done. Failures of later runs are logged and
// watching continues; a failure of the first run is returned.
func Watch(ctx context.Context, opts Options, fn Func) error {
	opts.defaults()
	log := opts.Logger

	if err := Run(ctx, log, fn); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer w.Close()

	ignore := make([]string, 0, len(opts.Ignore))
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignore = append(ignore, abs)
		}
	}
	ignored := func(path string) bool {
		for _, dir := range ignore {
			if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	for _, dir := range opts.Dirs {
		if err := addTree(w, dir, ignored); err != nil {
			return err
		}
	}
	log.Info("watching for changes", zap.Strings("dirs", opts.Dirs))

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || ignored(path) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New directories are watched as they appear.
				if err := addTree(w, path, ignored); err != nil {
					log.Debug("watch new directory", zap.String("path", path), zap.Error(err))
				}
			}
			if !opts.Match(path) {
				continue
			}
			log.Debug("change detected", zap.String("file", path), zap.Stringer("op", event.Op))
			timer.Reset(opts.Debounce)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := Run(ctx, log, fn); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error("generation failed", zap.Error(err))
			}
		}
	}
}

// addTree watches root and every directory below it. A root that is not a
// directory is ignored.
func addTree(w *fsnotify.Watcher, root string, ignored func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		name := d.Name()
		if ignored(abs) || (path != root && (name == "node_modules" || strings.HasPrefix(name, "."))) {
			return filepath.SkipDir
		}
		if err := w.Add(abs); err != nil {
			return errors.Wrapf(err, "watch %s", abs)
		}
		return nil
	})
}
