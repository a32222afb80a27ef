package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

const watchDebounce = 100 * time.Millisecond

// dbWatcher reports writes to a database file and its journal files.
type dbWatcher struct {
	watcher *fsnotify.Watcher
	base    string
	logger  *slog.Logger
}

// newDBWatcher starts watching the directory holding path. Watching begins
// before it returns, so changes made right after are not missed.
func newDBWatcher(path string, logger *slog.Logger) (*dbWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// SQLite writes app.db-journal or app.db-wal next to app.db, so the
	// directory is watched and events are filtered by name.
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &dbWatcher{watcher: watcher, base: filepath.Base(abs), logger: logger}, nil
}

// Run calls onChange once per burst of writes until ctx is done or onChange
// fails. It closes the watcher before returning.
func (w *dbWatcher) Run(ctx context.Context, onChange func() error) error {
	defer func() { _ = w.watcher.Close() }()

	changes := make(chan struct{}, 1)
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-egctx.Done():
				return nil

			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !strings.HasPrefix(filepath.Base(event.Name), w.base) {
					continue
				}

				// Debounce
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(watchDebounce, func() {
					select {
					case changes <- struct{}{}:
					default:
					}
				})

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				w.logger.Warn("watcher error", "error", err)
			}
		}
	})

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-changes:
				w.logger.Debug("database changed", "file", w.base)
				if err := onChange(); err != nil {
					return err
				}
			}
		}
	})

	return eg.Wait()
}
