package loader

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// settle is how long the directory must stay quiet before a change is
	// reported. Editors often write a file in several steps.
	settle = 200 * time.Millisecond

	// maxWait bounds the delay from the first event of a burst, so a file
	// that is rewritten continuously is still reported.
	maxWait = time.Second
)

// Watch calls onChange after .lua or .yaml files in dir are written,
// created, removed or renamed. A burst of events yields one call. Watch
// blocks until ctx is done and returns nil then.
func Watch(ctx context.Context, dir string, logger *log.Logger, onChange func()) error {
	w, err := openWatcher(dir)
	if err != nil {
		return err
	}
	defer w.Close()
	return debounce(ctx, w.Events, w.Errors, logger, onChange)
}

func openWatcher(dir string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create content watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

// debounce coalesces content events into onChange calls. A call happens once
// events stop for settle, or maxWait after the first event of the burst,
// whichever comes first.
func debounce(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, logger *log.Logger, onChange func()) error {
	if logger == nil {
		logger = log.Default()
	}

	var (
		fire     <-chan time.Time
		deadline time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !isContentFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			if fire == nil {
				deadline = time.Now().Add(maxWait)
			}
			fire = time.After(max(0, min(settle, time.Until(deadline))))

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Printf("content watcher: %v", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

func isContentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lua", ".yaml", ".yml":
		return true
	}
	return false
}
