package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-dev/podium/internal/reconcile"
	"github.com/orchestra-dev/podium/internal/tracker"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// fakeHandle is a minimal in-flight run.
type fakeHandle struct {
	id    string
	name  string
	chain []string
}

func (h *fakeHandle) ID() string                       { return h.id }
func (h *fakeHandle) Command() string                  { return h.name }
func (h *fakeHandle) TriggerChain() []string           { return h.chain }
func (h *fakeHandle) Finalized() bool                  { return false }
func (h *fakeHandle) Result() (domain.RunResult, bool) { return domain.RunResult{}, false }

// fakeOrchestrator serves canned active runs and history.
type fakeOrchestrator struct {
	active  map[string][]ports.RunHandle
	history map[string][]domain.RunResult
}

func (f *fakeOrchestrator) Run(ctx context.Context, name string) (ports.RunHandle, error) {
	panic("reconciler must never start runs")
}

func (f *fakeOrchestrator) Cancel(ctx context.Context, name string) (int, error) {
	panic("reconciler must never cancel runs")
}

func (f *fakeOrchestrator) Trigger(ctx context.Context, event string) error {
	panic("reconciler must never fire triggers")
}

func (f *fakeOrchestrator) History(name string, limit int) []domain.RunResult {
	results := f.history[name]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (f *fakeOrchestrator) Active(name string) []ports.RunHandle { return f.active[name] }
func (f *fakeOrchestrator) Has(name string) bool                 { return true }
func (f *fakeOrchestrator) Commands() []string                   { return nil }

func (f *fakeOrchestrator) Subscribe(name string, sub ports.Subscriber) func() {
	return func() {}
}

// stubView records applied updates.
type stubView struct {
	name    string
	applied []domain.PresentationUpdate
}

func (v *stubView) CommandName() string               { return v.name }
func (v *stubView) Apply(u domain.PresentationUpdate) { v.applied = append(v.applied, u) }

func TestReconcileActiveRun(t *testing.T) {
	orch := &fakeOrchestrator{
		active: map[string][]ports.RunHandle{
			"Build": {&fakeHandle{id: "r1", name: "Build", chain: []string{"file_changed:src"}}},
		},
	}
	r := reconcile.New(orch, "", nil)

	v := &stubView{name: "Build"}
	r.Reconcile(v)

	require.Len(t, v.applied, 1)
	assert.True(t, v.applied[0].Running)
	assert.Contains(t, v.applied[0].Tooltip, "file change")
}

func TestReconcileHonorsCustomFileMarker(t *testing.T) {
	orch := &fakeOrchestrator{
		active: map[string][]ports.RunHandle{
			"Build": {&fakeHandle{id: "r1", name: "Build", chain: []string{"fswatch:src"}}},
		},
	}
	r := reconcile.New(orch, "fswatch", nil)

	v := &stubView{name: "Build"}
	r.Reconcile(v)

	require.Len(t, v.applied, 1)
	assert.Contains(t, v.applied[0].Tooltip, "file change")

	// The same chain classifies as automatic under the default marker.
	def := reconcile.New(orch, "", nil)
	w := &stubView{name: "Build"}
	def.Reconcile(w)
	require.Len(t, w.applied, 1)
	assert.NotContains(t, w.applied[0].Tooltip, "file change")
}

func TestReconcileFallsBackToHistory(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	orch := &fakeOrchestrator{
		history: map[string][]domain.RunResult{
			"Build": {{
				Command:    "Build",
				Status:     domain.StatusFailed,
				StartedAt:  start,
				FinishedAt: start.Add(2 * time.Second),
				OutputPath: "/tmp/build.log",
			}},
		},
	}
	r := reconcile.New(orch, "", nil)

	v := &stubView{name: "Build"}
	r.Reconcile(v)

	require.Len(t, v.applied, 1)
	assert.False(t, v.applied[0].Running)
	assert.Equal(t, domain.StatusFailed.Icon(), v.applied[0].Icon)
	assert.Equal(t, "/tmp/build.log", v.applied[0].OutputPath)
}

func TestReconcileNoStateLeavesViewUntouched(t *testing.T) {
	r := reconcile.New(&fakeOrchestrator{}, "", nil)

	v := &stubView{name: "Build"}
	r.Reconcile(v)
	assert.Empty(t, v.applied)
}

func TestReconcileIsRepeatable(t *testing.T) {
	orch := &fakeOrchestrator{
		history: map[string][]domain.RunResult{
			"Build": {{Command: "Build", Status: domain.StatusSuccess}},
		},
	}
	r := reconcile.New(orch, "", nil)

	v := &stubView{name: "Build"}
	r.Reconcile(v)
	r.Reconcile(v)

	require.Len(t, v.applied, 2)
	assert.Equal(t, v.applied[0], v.applied[1])
}

func TestReconcileAllCoversEveryOccurrence(t *testing.T) {
	orch := &fakeOrchestrator{
		history: map[string][]domain.RunResult{
			"Build": {{Command: "Build", Status: domain.StatusSuccess}},
			"Tests": {{Command: "Tests", Status: domain.StatusCancelled}},
		},
	}
	r := reconcile.New(orch, "", nil)

	tr := tracker.New()
	a := &stubView{name: "Build"}
	b := &stubView{name: "Build"}
	c := &stubView{name: "Tests"}
	tr.Register(a)
	tr.Register(b)
	tr.Register(c)

	r.ReconcileAll(tr)

	assert.Len(t, a.applied, 1)
	assert.Len(t, b.applied, 1)
	require.Len(t, c.applied, 1)
	assert.Equal(t, domain.StatusCancelled.Icon(), c.applied[0].Icon)
}
