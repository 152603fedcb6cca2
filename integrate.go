package podium

import (
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// subscribeAll registers a lifecycle subscriber for every configured
// command. Engine callbacks may arrive on arbitrary goroutines; the
// subscriber hops each one onto the execution loop before touching tracker
// or view state, so broadcast always runs single-threaded.
func (c *Controller) subscribeAll() {
	for _, def := range c.cfg.Commands {
		if !c.orch.Has(def.Name) {
			c.logger.Warn("command not registered with engine, skipping subscription", "command", def.Name)
			continue
		}
		unsub := c.orch.Subscribe(def.Name, &loopSubscriber{c: c})
		c.unsubs = append(c.unsubs, unsub)
	}
}

// loopSubscriber bridges engine lifecycle callbacks onto the controller's
// loop. It holds no state of its own.
type loopSubscriber struct {
	c *Controller
}

func (s *loopSubscriber) OnStarted(h ports.RunHandle) {
	chain := h.TriggerChain()
	name := h.Command()
	s.submit(func() {
		src := domain.ClassifyChain(chain, s.c.fileMarker)
		s.c.broadcast(name, domain.RunningUpdate(src))
	})
}

func (s *loopSubscriber) OnSuccess(h ports.RunHandle)   { s.terminal(h) }
func (s *loopSubscriber) OnFailed(h ports.RunHandle)    { s.terminal(h) }
func (s *loopSubscriber) OnCancelled(h ports.RunHandle) { s.terminal(h) }

func (s *loopSubscriber) terminal(h ports.RunHandle) {
	res, ok := h.Result()
	if !ok {
		s.c.logger.Warn("terminal callback without frozen result", "command", h.Command())
		return
	}
	s.submit(func() {
		s.c.broadcast(res.Command, domain.ResultUpdate(res))
	})
}

// submit hops onto the loop. Callbacks racing a Detach are dropped: once
// the loop stops accepting work there is no view left to update.
func (s *loopSubscriber) submit(fn func()) {
	l := s.c.loop.Load()
	if l == nil {
		return
	}
	if err := l.Submit(fn); err != nil {
		s.c.logger.Debug("dropped lifecycle update, loop stopped", "err", err)
	}
}

// broadcast fans one update out to every registered occurrence of the
// command. Runs on the loop. A panicking view is isolated so its siblings
// still render.
func (c *Controller) broadcast(name string, update domain.PresentationUpdate) {
	for _, view := range c.tracker.Occurrences(name) {
		c.applyView(view, update)
	}
}

func (c *Controller) applyView(view ports.OccurrenceView, update domain.PresentationUpdate) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.SubscriberPanics.Inc()
			c.logger.Error("view panicked applying update", "command", view.CommandName(), "panic", r)
		}
	}()
	view.Apply(update)
}
