package tracker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-dev/podium/internal/tracker"
	"github.com/orchestra-dev/podium/pkg/domain"
)

// stubView records the updates applied to it.
type stubView struct {
	name    string
	applied []domain.PresentationUpdate
}

func (v *stubView) CommandName() string { return v.name }

func (v *stubView) Apply(u domain.PresentationUpdate) { v.applied = append(v.applied, u) }

func TestRegisterAndOccurrences(t *testing.T) {
	tr := tracker.New()
	a := &stubView{name: "Build"}
	b := &stubView{name: "Build"}
	c := &stubView{name: "Tests"}

	tr.Register(a)
	tr.Register(b)
	tr.Register(c)

	assert.Len(t, tr.Occurrences("Build"), 2)
	assert.Len(t, tr.Occurrences("Tests"), 1)
	assert.Empty(t, tr.Occurrences("Unknown"))
}

func TestIsDuplicate(t *testing.T) {
	tr := tracker.New()
	tr.Register(&stubView{name: "Build"})
	assert.False(t, tr.IsDuplicate("Build"))

	tr.Register(&stubView{name: "Build"})
	assert.True(t, tr.IsDuplicate("Build"))
	assert.False(t, tr.IsDuplicate("Unknown"))
}

func TestNamesKeepRegistrationOrder(t *testing.T) {
	tr := tracker.New()
	tr.Register(&stubView{name: "Zeta"})
	tr.Register(&stubView{name: "Alpha"})
	tr.Register(&stubView{name: "Zeta"}) // repeat must not reorder

	assert.Equal(t, []string{"Zeta", "Alpha"}, tr.Names())
}

func TestBroadcastReachesEveryOccurrence(t *testing.T) {
	tr := tracker.New()
	a := &stubView{name: "Build"}
	b := &stubView{name: "Build"}
	other := &stubView{name: "Tests"}
	tr.Register(a)
	tr.Register(b)
	tr.Register(other)

	update := domain.PresentationUpdate{Icon: "✅", Tooltip: "success (1s)"}
	tr.Broadcast("Build", update)

	require.Len(t, a.applied, 1)
	require.Len(t, b.applied, 1)
	assert.Equal(t, update, a.applied[0])
	assert.Equal(t, update, b.applied[0])
	assert.Empty(t, other.applied)
}

func TestReset(t *testing.T) {
	tr := tracker.New()
	tr.Register(&stubView{name: "Build"})
	tr.Reset()

	assert.Empty(t, tr.Names())
	assert.Empty(t, tr.Occurrences("Build"))
}
