package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"cropcast/internal/logging"
)

// Watch reloads the registry when artifact files change. Events are
// debounced so a multi-file sync triggers a single reload. Blocks until the
// context is cancelled.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create model watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("failed to watch model directory %s: %w", r.dir, err)
	}
	logging.Models("watching %s for artifact changes (debounce %v)", r.dir, debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".model.json") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.ModelsDebug("artifact event: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			logging.Models("artifact change detected, reloading registry")
			if err := r.Load(); err != nil {
				logging.ModelsWarn("reload failed, previous engines remain active: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.ModelsWarn("model watcher error: %v", err)
		}
	}
}
