package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orchestra-dev/podium/pkg/domain"
)

func TestParseLifecycleTrigger(t *testing.T) {
	tests := []struct {
		trigger    string
		wantPhase  string
		wantParent string
		wantOK     bool
	}{
		{"command_success:Build", domain.PhaseSuccess, "Build", true},
		{"command_failed:Run Tests", domain.PhaseFailed, "Run Tests", true},
		{"command_cancelled:Deploy", domain.PhaseCancelled, "Deploy", true},
		{"command_success:Name:With:Colons", domain.PhaseSuccess, "Name:With:Colons", true},
		{"command_success:", "", "", false},
		{"command_started:Build", "", "", false},
		{"file_changed:src", "", "", false},
		{"", "", "", false},
		{"Build", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			phase, parent, ok := domain.ParseLifecycleTrigger(tt.trigger)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPhase, phase)
			assert.Equal(t, tt.wantParent, parent)
		})
	}
}

func TestLifecycleEventRoundTrip(t *testing.T) {
	event := domain.LifecycleEvent(domain.PhaseSuccess, "Build")
	assert.Equal(t, "command_success:Build", event)

	phase, parent, ok := domain.ParseLifecycleTrigger(event)
	assert.True(t, ok)
	assert.Equal(t, domain.PhaseSuccess, phase)
	assert.Equal(t, "Build", parent)
}
