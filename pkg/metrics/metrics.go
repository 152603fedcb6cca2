// Package metrics defines the prometheus instrumentation for the podium
// controller and its event bridge. Hosts that scrape metrics mount the
// collectors on their own registry; everyone else gets a private registry
// and pays nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters the controller and bridge increment.
type Metrics struct {
	// EventsObserved counts raw filesystem notifications per trigger,
	// before debouncing.
	EventsObserved *prometheus.CounterVec

	// TriggersFired counts debounced trigger fires per trigger.
	TriggersFired *prometheus.CounterVec

	// EventsDropped counts notifications discarded because the bridge was
	// not attached to a running loop.
	EventsDropped prometheus.Counter

	// RunsRequested counts sync-safe run requests accepted.
	RunsRequested prometheus.Counter

	// CancelsRequested counts sync-safe cancel requests accepted.
	CancelsRequested prometheus.Counter

	// SubscriberPanics counts panics recovered from host callbacks.
	SubscriberPanics prometheus.Counter
}

// New registers the podium collectors on reg. A nil reg registers on the
// default prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EventsObserved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podium",
			Name:      "watch_events_observed_total",
			Help:      "Raw filesystem notifications received, before debouncing.",
		}, []string{"trigger"}),
		TriggersFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podium",
			Name:      "triggers_fired_total",
			Help:      "Debounced trigger fires delivered to the engine.",
		}, []string{"trigger"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "podium",
			Name:      "watch_events_dropped_total",
			Help:      "Notifications discarded while the bridge was detached.",
		}),
		RunsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "podium",
			Name:      "runs_requested_total",
			Help:      "Sync-safe run requests accepted by the controller.",
		}),
		CancelsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "podium",
			Name:      "cancels_requested_total",
			Help:      "Sync-safe cancel requests accepted by the controller.",
		}),
		SubscriberPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "podium",
			Name:      "subscriber_panics_total",
			Help:      "Panics recovered from host lifecycle callbacks.",
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
