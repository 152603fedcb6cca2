// Package watch runs the filesystem watchers configured by WatchSpecs and
// feeds matching events into the debounce bridge.
//
// Watcher goroutines never touch controller state: their only output is
// bridge.Notify, which is the designated thread-safe crossing point.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/orchestra-dev/podium/internal/bridge"
	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/pkg/domain"
)

// Manager owns one fsnotify watcher per WatchSpec. Start and Stop are
// driven by the controller's attach/detach lifecycle.
type Manager struct {
	bridge *bridge.Bridge
	specs  []domain.WatchSpec
	logger *slog.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewManager creates a stopped Manager.
func NewManager(b *bridge.Bridge, specs []domain.WatchSpec, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{bridge: b, specs: specs, logger: logger}
}

// Start launches one watcher goroutine per spec. Specs whose directory does
// not exist are skipped with a warning; Start only fails when a watcher
// cannot be created at all.
func (m *Manager) Start() error {
	if m.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	started := 0
	for _, spec := range m.specs {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			cancel()
			return fmt.Errorf("failed to create watcher for %s: %w", spec.Dir, err)
		}
		if err := addRecursive(w, spec); err != nil {
			m.logger.Warn("watch directory skipped", "dir", spec.Dir, "err", err)
			w.Close()
			continue
		}

		spec := spec
		group.Go(func() error {
			defer w.Close()
			m.watchLoop(ctx, w, spec)
			return nil
		})
		started++
		m.logger.Info("watching", "dir", spec.Dir, "trigger", spec.Trigger, "debounce", spec.Debounce())
	}

	m.cancel = cancel
	m.group = group
	m.logger.Info("file watchers started", "configured", len(m.specs), "active", started)
	return nil
}

// Stop terminates all watcher goroutines and waits for them to exit.
// Pending debounce timers are cancelled by the bridge, not here.
// Safe to call repeatedly.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	_ = m.group.Wait()
	m.cancel = nil
	m.group = nil
	m.logger.Info("file watchers stopped")
}

func (m *Manager) watchLoop(ctx context.Context, w *fsnotify.Watcher, spec domain.WatchSpec) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			m.handleEvent(w, spec, event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watcher error", "dir", spec.Dir, "err", err)
		}
	}
}

func (m *Manager) handleEvent(w *fsnotify.Watcher, spec domain.WatchSpec, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	// New subdirectories must be added explicitly: fsnotify watches are
	// not recursive.
	if event.Op.Has(fsnotify.Create) && isDir(event.Name) {
		if !ignored(spec, filepath.Base(event.Name)) {
			_ = w.Add(event.Name)
		}
		return
	}

	if !Matches(spec, event.Name) {
		return
	}
	m.logger.Debug("file change detected", "path", event.Name, "trigger", spec.Trigger)
	m.bridge.Notify(spec.Trigger, spec.Debounce())
}
