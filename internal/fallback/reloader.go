package fallback

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/thermo/internal/checksum"
	"github.com/starford/thermo/internal/models"
)

// ReloadCallback is called after a new table snapshot has been installed.
type ReloadCallback func(entries int, sum string)

// Reloader serves lookups from the current table snapshot. Snapshots are
// immutable; a reload swaps the pointer.
type Reloader struct {
	base    *Table
	current atomic.Pointer[Table]
	sum     atomic.Value // string checksum of the loaded file
}

// NewReloader starts with base. Files loaded later are layered over base,
// a file entry replacing the base entry of the same species.
func NewReloader(base *Table) *Reloader {
	r := &Reloader{base: base}
	r.current.Store(base)
	r.sum.Store("")
	return r
}

// Table returns the snapshot currently in use.
func (r *Reloader) Table() *Table {
	return r.current.Load()
}

// Lookup implements resolver.Fallback against the current snapshot.
func (r *Reloader) Lookup(id string) (models.Record, bool) {
	return r.current.Load().Lookup(id)
}

// Name returns the common name from the current snapshot.
func (r *Reloader) Name(id string) string {
	return r.current.Load().Name(id)
}

// Reload loads path over the base table and installs the result when the
// file content changed. It returns whether a new snapshot was installed. On
// error the old snapshot stays.
func (r *Reloader) Reload(path string) (bool, error) {
	sum, err := checksum.File(path)
	if err != nil {
		return false, err
	}
	if sum == r.sum.Load().(string) {
		return false, nil
	}
	t, err := Load(path)
	if err != nil {
		return false, err
	}
	r.current.Store(r.base.Overlay(t))
	r.sum.Store(sum)
	return true, nil
}

// Watch reloads path whenever it changes until ctx is cancelled. Editors that
// replace files by rename are handled by watching the parent directory.
func (r *Reloader) Watch(ctx context.Context, path string, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("fallback watcher: started", slog.String("path", abs))

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("fallback watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			changed, err := r.Reload(abs)
			if err != nil {
				logger.Warn("fallback watcher: reload failed, keeping previous table",
					slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			if changed {
				t := r.Table()
				sum := r.sum.Load().(string)
				logger.Info("fallback watcher: table reloaded",
					slog.Int("entries", t.Len()), slog.String("checksum", sum))
				if cb != nil {
					cb(t.Len(), sum)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(100 * time.Millisecond)
			} else {
				debounce.Reset(100 * time.Millisecond)
			}
			fire = debounce.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("fallback watcher: error", slog.String("error", err.Error()))
		}
	}
}
