package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-dev/podium/pkg/adapters/memory"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// recordingSubscriber captures lifecycle callbacks in arrival order.
type recordingSubscriber struct {
	mu     sync.Mutex
	events []string
	chains [][]string
}

func (s *recordingSubscriber) record(event string, h ports.RunHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.chains = append(s.chains, h.TriggerChain())
}

func (s *recordingSubscriber) OnStarted(h ports.RunHandle)   { s.record("started", h) }
func (s *recordingSubscriber) OnSuccess(h ports.RunHandle)   { s.record("success", h) }
func (s *recordingSubscriber) OnFailed(h ports.RunHandle)    { s.record("failed", h) }
func (s *recordingSubscriber) OnCancelled(h ports.RunHandle) { s.record("cancelled", h) }

func (s *recordingSubscriber) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *recordingSubscriber) lastChain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chains) == 0 {
		return nil
	}
	return s.chains[len(s.chains)-1]
}

func defs() []domain.CommandDefinition {
	return []domain.CommandDefinition{
		{Name: "Build"},
		{Name: "Tests", Triggers: []string{"command_success:Build"}},
		{Name: "Notify", Triggers: []string{"command_failed:Build"}},
	}
}

func TestRunDeliversStartedThenSuccess(t *testing.T) {
	orch := memory.New(defs())
	defer orch.Close()

	sub := &recordingSubscriber{}
	unsub := orch.Subscribe("Build", sub)
	defer unsub()

	h, err := orch.Run(context.Background(), "Build")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.Finalized() }, time.Second, 5*time.Millisecond)

	res, ok := h.Result()
	require.True(t, ok)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Empty(t, res.TriggerChain, "manual runs carry an empty chain")

	require.Eventually(t, func() bool {
		events := sub.snapshot()
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"started", "success"}, sub.snapshot())
}

func TestRunUnknownCommand(t *testing.T) {
	orch := memory.New(defs())
	defer orch.Close()

	_, err := orch.Run(context.Background(), "Nope")
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)
}

func TestSuccessCascadesWithExtendedChain(t *testing.T) {
	orch := memory.New(defs())
	defer orch.Close()

	sub := &recordingSubscriber{}
	unsub := orch.Subscribe("Tests", sub)
	defer unsub()

	_, err := orch.Run(context.Background(), "Build")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(orch.History("Tests", 1)) == 1
	}, time.Second, 5*time.Millisecond)

	// The cascaded run's chain records the lifecycle event that caused it.
	assert.Equal(t, []string{"command_success:Build"}, sub.lastChain())
	assert.Empty(t, orch.History("Notify", 1), "failure hook must not fire on success")
}

func TestFailureCascade(t *testing.T) {
	failing := memory.ExecutorFunc(func(ctx context.Context, def domain.CommandDefinition) (string, error) {
		if def.Name == "Build" {
			return "", errors.New("exit status 2")
		}
		return "", nil
	})
	orch := memory.New(defs(), memory.WithExecutor(failing))
	defer orch.Close()

	_, err := orch.Run(context.Background(), "Build")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(orch.History("Notify", 1)) == 1
	}, time.Second, 5*time.Millisecond)

	build := orch.History("Build", 1)
	require.Len(t, build, 1)
	assert.Equal(t, domain.StatusFailed, build[0].Status)
	assert.Equal(t, "exit status 2", build[0].Error)
	assert.Empty(t, orch.History("Tests", 1), "success hook must not fire on failure")
}

func TestExternalTrigger(t *testing.T) {
	withFile := append(defs(), domain.CommandDefinition{
		Name:     "Rebuild",
		Triggers: []string{"file_changed:src"},
	})
	orch := memory.New(withFile)
	defer orch.Close()

	require.NoError(t, orch.Trigger(context.Background(), "file_changed:src"))

	require.Eventually(t, func() bool {
		return len(orch.History("Rebuild", 1)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"file_changed:src"}, orch.History("Rebuild", 1)[0].TriggerChain)
}

func TestCancelActiveRun(t *testing.T) {
	blocking := memory.ExecutorFunc(func(ctx context.Context, def domain.CommandDefinition) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	orch := memory.New(defs(), memory.WithExecutor(blocking))
	defer orch.Close()

	sub := &recordingSubscriber{}
	unsub := orch.Subscribe("Build", sub)
	defer unsub()

	h, err := orch.Run(context.Background(), "Build")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(orch.Active("Build")) == 1
	}, time.Second, 5*time.Millisecond)

	count, err := orch.Cancel(context.Background(), "Build")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Eventually(t, func() bool { return h.Finalized() }, time.Second, 5*time.Millisecond)
	res, _ := h.Result()
	assert.Equal(t, domain.StatusCancelled, res.Status)
	assert.Empty(t, orch.Active("Build"))

	require.Eventually(t, func() bool {
		events := sub.snapshot()
		return len(events) == 2 && events[1] == "cancelled"
	}, time.Second, 5*time.Millisecond)
}

func TestCancelWithNothingActive(t *testing.T) {
	orch := memory.New(defs())
	defer orch.Close()

	count, err := orch.Cancel(context.Background(), "Build")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = orch.Cancel(context.Background(), "Nope")
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)
}

func TestHistoryIsBoundedAndOrdered(t *testing.T) {
	orch := memory.New(defs(), memory.WithHistoryLimit(3))
	defer orch.Close()

	for i := 0; i < 5; i++ {
		_, err := orch.Run(context.Background(), "Build")
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			return len(orch.Active("Build")) == 0
		}, time.Second, 5*time.Millisecond)
	}

	history := orch.History("Build", 0)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].FinishedAt.After(history[i-1].FinishedAt),
			"history must be most recent first")
	}
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	orch := memory.New(defs())
	defer orch.Close()

	unsubPanic := orch.Subscribe("Build", panicSubscriber{})
	defer unsubPanic()
	sub := &recordingSubscriber{}
	unsub := orch.Subscribe("Build", sub)
	defer unsub()

	_, err := orch.Run(context.Background(), "Build")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(sub.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
}

type panicSubscriber struct{}

func (panicSubscriber) OnStarted(ports.RunHandle)   { panic("bad subscriber") }
func (panicSubscriber) OnSuccess(ports.RunHandle)   { panic("bad subscriber") }
func (panicSubscriber) OnFailed(ports.RunHandle)    { panic("bad subscriber") }
func (panicSubscriber) OnCancelled(ports.RunHandle) { panic("bad subscriber") }

func TestUnsubscribeStopsDelivery(t *testing.T) {
	orch := memory.New(defs())
	defer orch.Close()

	sub := &recordingSubscriber{}
	unsub := orch.Subscribe("Build", sub)
	unsub()

	_, err := orch.Run(context.Background(), "Build")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(orch.History("Build", 1)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, sub.snapshot())
}

func TestCloseRejectsNewRuns(t *testing.T) {
	orch := memory.New(defs())
	orch.Close()

	_, err := orch.Run(context.Background(), "Build")
	assert.Error(t, err)
}
