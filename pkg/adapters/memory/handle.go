package memory

import (
	"context"
	"sync"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// runHandle implements ports.RunHandle for one in-memory run.
type runHandle struct {
	id     string
	name   string
	chain  []string
	cancel context.CancelFunc

	mu        sync.Mutex
	finalized bool
	result    domain.RunResult
}

func newRunHandle(id, name string, chain []string, cancel context.CancelFunc) *runHandle {
	return &runHandle{
		id:     id,
		name:   name,
		chain:  append([]string(nil), chain...),
		cancel: cancel,
	}
}

func (h *runHandle) ID() string      { return h.id }
func (h *runHandle) Command() string { return h.name }

func (h *runHandle) TriggerChain() []string {
	return append([]string(nil), h.chain...)
}

func (h *runHandle) Finalized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finalized
}

func (h *runHandle) Result() (domain.RunResult, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.finalized
}

// finalize freezes the result. The trigger chain is immutable from here on.
func (h *runHandle) finalize(result domain.RunResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finalized {
		return
	}
	h.finalized = true
	h.result = result
}

func (h *runHandle) cancelRun() {
	h.cancel()
}
