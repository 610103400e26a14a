package input

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval groups the bursts of events editors emit for one save.
const DebounceInterval = 100 * time.Millisecond

// Watch calls onChange whenever a team file under path is written, created,
// renamed or removed, until ctx is done. For a file path only that file
// counts; for a directory any supported file in it does.
func Watch(ctx context.Context, path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so replace-on-save editors keep being seen.
	dir, match := absPath, IsSupported
	if !info.IsDir() {
		dir = filepath.Dir(absPath)
		match = func(name string) bool { return name == absPath }
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !match(event.Name) {
				continue
			}
			debounce.Reset(DebounceInterval)

		case <-debounce.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
