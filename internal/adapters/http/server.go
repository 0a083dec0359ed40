// Package http exposes a read-only observation surface over the bridge.
// Agents never drive the bridge over HTTP; commands travel only through the
// channel documents. This server exists for humans and monitoring.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server answers observation requests from the channel's point of view.
type Server struct {
	ch      ports.Channel
	actions []string
}

// NewHandler builds the observer router. actions is the sorted registry
// listing; gatherer may be nil to omit the /metrics endpoint.
func NewHandler(ch ports.Channel, actions []string, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{ch: ch, actions: actions}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.Healthz)
	r.Get("/status", s.Status)
	r.Get("/result", s.Result)
	r.Get("/actions", s.Actions)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Healthz reports liveness of the observer itself.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Status returns the current status document.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	st, err := s.ch.ReadStatus(r.Context())
	switch {
	case errors.Is(err, domain.ErrNoStatus):
		http.Error(w, "no status published yet", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Result returns the current result document.
func (s *Server) Result(w http.ResponseWriter, r *http.Request) {
	res, err := s.ch.ReadResult(r.Context())
	switch {
	case errors.Is(err, domain.ErrNoResult):
		http.Error(w, "no result published yet", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Actions returns the registered action names.
func (s *Server) Actions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"actions": s.actions,
		"count":   len(s.actions),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
