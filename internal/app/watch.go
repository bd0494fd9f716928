package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before recompiling.
const DefaultDebounce = 200 * time.Millisecond

// Watch compiles paths once, then recompiles every changed BNDL file until
// ctx ends. Each batch of results is passed to onResults. Subdirectories are
// watched when they exist at start. Files are watched through their
// directory so editors that replace files on save are handled.
func (a *App) Watch(ctx context.Context, paths []string, useCache bool, debounce time.Duration, onResults func([]CompileResult)) error {
	files, err := ExpandPaths(paths)
	if err != nil {
		return err
	}
	results, err := a.CompileFiles(ctx, files, useCache)
	if err != nil {
		return err
	}
	onResults(results)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched, err := watchTargets(paths)
	if err != nil {
		return err
	}
	for dir := range watched {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	a.logger.Info("Watching for changes", "dirs", len(watched))

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if !strings.HasSuffix(name, SourceExt) || !watched.covers(name) {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(pending, name)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending[name] = true
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("File watcher error", "error", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			changed, err = ExpandPaths(changed)
			if err != nil {
				a.logger.Warn("Changed file vanished before compiling", "error", err)
				continue
			}
			a.logger.Debug("Recompiling changed files", "count", len(changed))
			results, err := a.CompileFiles(ctx, changed, useCache)
			if err != nil {
				return nil
			}
			onResults(results)
		}
	}
}

// watchSet maps each watched directory to the files explicitly requested in
// it. A nil file set means every BNDL file in the directory.
type watchSet map[string]map[string]bool

func watchTargets(paths []string) (watchSet, error) {
	set := make(watchSet)
	for _, p := range paths {
		p = filepath.Clean(p)
		files, err := ExpandPaths([]string{p})
		if err != nil {
			return nil, err
		}
		if len(files) == 1 && files[0] == p {
			dir := filepath.Dir(p)
			if _, ok := set[dir]; !ok {
				set[dir] = make(map[string]bool)
			}
			if set[dir] != nil {
				set[dir][p] = true
			}
			continue
		}
		set[p] = nil
		for _, f := range files {
			set[filepath.Dir(f)] = nil
		}
	}
	return set, nil
}

func (w watchSet) covers(name string) bool {
	name = filepath.Clean(name)
	files, ok := w[filepath.Dir(name)]
	if !ok {
		return false
	}
	return files == nil || files[name]
}
