/*
Package ports defines the interfaces at the podium library boundary.

These interfaces decouple the controller from the execution engine behind it
and from the host frontend in front of it, so either side can be swapped
(real engine vs. in-memory double, TUI vs. headless host) without touching
the core.

# Key Interfaces

  - Orchestrator: the execution engine collaborator (run, cancel, trigger,
    history, lifecycle subscriptions).
  - RunHandle: one in-flight or completed run, exposing its trigger chain.
  - Subscriber: the lifecycle callback contract implemented per host.
  - OccurrenceView: one forest occurrence receiving presentation updates.
  - Notifier: optional user-facing message sink for hosts with a log pane.
*/
package ports
