package watch_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-dev/podium/internal/bridge"
	"github.com/orchestra-dev/podium/internal/watch"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/loop"
)

type fireCollector struct {
	mu    sync.Mutex
	fires []string
}

func (c *fireCollector) record(trigger string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fires = append(c.fires, trigger)
}

func (c *fireCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fires)
}

func setup(t *testing.T, specs []domain.WatchSpec) (*watch.Manager, *fireCollector) {
	t.Helper()

	collector := &fireCollector{}
	b := bridge.New(collector.record)

	l := loop.New()
	l.Start()
	t.Cleanup(l.Stop)
	b.Attach(l)
	t.Cleanup(b.Detach)

	m := watch.NewManager(b, specs, nil)
	require.NoError(t, m.Start())
	t.Cleanup(m.Stop)
	return m, collector
}

func TestWatcherFiresDebouncedTrigger(t *testing.T) {
	dir := t.TempDir()
	_, collector := setup(t, []domain.WatchSpec{{
		Dir:        dir,
		Extensions: []string{".go"},
		Trigger:    "file_changed:src",
		DebounceMS: 30,
	}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	require.Eventually(t, func() bool {
		return collector.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	_, collector := setup(t, []domain.WatchSpec{{
		Dir:        dir,
		Extensions: []string{".go"},
		Trigger:    "file_changed:src",
		DebounceMS: 20,
	}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, collector.count())
}

func TestWatcherCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	_, collector := setup(t, []domain.WatchSpec{{
		Dir:        dir,
		Trigger:    "file_changed:src",
		DebounceMS: 60,
	}})

	path := filepath.Join(dir, "main.go")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return collector.count() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, collector.count())
}

func TestWatcherSkipsMissingDirectory(t *testing.T) {
	m := watch.NewManager(bridge.New(func(string) {}), []domain.WatchSpec{{
		Dir:     filepath.Join(t.TempDir(), "absent"),
		Trigger: "file_changed:missing",
	}}, nil)

	assert.NoError(t, m.Start())
	m.Stop()
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	m, _ := setup(t, []domain.WatchSpec{{
		Dir:     t.TempDir(),
		Trigger: "file_changed:src",
	}})
	m.Stop()
	m.Stop()
}
