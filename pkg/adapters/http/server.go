// Package http exposes a read-mostly status API over the controller: the
// command forest, per-command run state, configuration diagnostics, and the
// prometheus scrape endpoint. Mutations are limited to run and cancel
// requests, which go through the controller's sync-safe entry points.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// CommandView is the wire shape of one forest occurrence.
type CommandView struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Tooltip   string        `json:"tooltip,omitempty"`
	Duplicate bool          `json:"duplicate"`
	Children  []CommandView `json:"children,omitempty"`
}

// StatusResponse is the GET /api/commands payload.
type StatusResponse struct {
	Commands []CommandView `json:"commands"`
}

// Server serves the status API for one controller.
type Server struct {
	ctrl   *podium.Controller
	logger *slog.Logger
}

// NewHandler builds the routed handler. reg may be nil to omit /metrics.
func NewHandler(ctrl *podium.Controller, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	s := &Server{ctrl: ctrl, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/api/version", s.version)
	r.Get("/api/commands", s.commands)
	r.Get("/api/commands/{name}/history", s.history)
	r.Get("/api/diagnostics", s.diagnostics)
	r.Post("/api/commands/{name}/run", s.run)
	r.Post("/api/commands/{name}/cancel", s.cancel)
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{
		"app":     "podium",
		"version": podium.Version,
	})
}

// commands renders the forest with the latest known state per occurrence.
// Forest structure is immutable after construction; run state comes from the
// engine's own thread-safe accessors, so no loop hop is needed here.
func (s *Server) commands(w http.ResponseWriter, r *http.Request) {
	orch := s.ctrl.Orchestrator()
	views := make([]CommandView, 0, len(s.ctrl.Forest()))
	for _, root := range s.ctrl.Forest() {
		views = append(views, s.renderNode(orch, root))
	}
	writeJSON(w, s.logger, StatusResponse{Commands: views})
}

func (s *Server) renderNode(orch ports.Orchestrator, node *domain.CommandNode) CommandView {
	v := CommandView{
		Name:      node.Name(),
		Status:    string(domain.StatusPending),
		Duplicate: s.ctrl.IsDuplicate(node.Name()),
	}

	if active := orch.Active(node.Name()); len(active) > 0 {
		v.Status = string(domain.StatusRunning)
		src := domain.ClassifyChain(active[len(active)-1].TriggerChain(), s.ctrl.FileMarker())
		v.Tooltip = src.Summary()
	} else if history := orch.History(node.Name(), 1); len(history) > 0 {
		v.Status = string(history[0].Status)
		v.Tooltip = history[0].Tooltip()
	}

	for _, child := range node.Children {
		v.Children = append(v.Children, s.renderNode(orch, child))
	}
	return v
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	orch := s.ctrl.Orchestrator()
	if !orch.Has(name) {
		http.Error(w, fmt.Sprintf("unknown command: %s", name), http.StatusNotFound)
		return
	}
	writeJSON(w, s.logger, orch.History(name, 0))
}

func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.ctrl.Validation())
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.ctrl.Orchestrator().Has(name) {
		http.Error(w, fmt.Sprintf("unknown command: %s", name), http.StatusNotFound)
		return
	}
	if err := s.ctrl.RequestRun(name); err != nil {
		s.writeRequestError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, s.logger, map[string]string{"command": name, "status": "accepted"})
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.ctrl.Orchestrator().Has(name) {
		http.Error(w, fmt.Sprintf("unknown command: %s", name), http.StatusNotFound)
		return
	}
	if err := s.ctrl.RequestCancel(name); err != nil {
		s.writeRequestError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, s.logger, map[string]string{"command": name, "status": "accepted"})
}

func (s *Server) writeRequestError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, domain.ErrNotAttached) {
		http.Error(w, "controller not attached", http.StatusServiceUnavailable)
		return
	}
	s.logger.Error("request failed", "command", name, "err", err)
	http.Error(w, fmt.Sprintf("request failed: %v", err), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
