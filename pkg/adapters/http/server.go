// Package http exposes the graph editor over a REST API: draft storage,
// compilation to rulesets, validation and Mermaid rendering.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	presentation "github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/graph"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/ruleset"
)

// Server handles graph editing requests against a draft store.
type Server struct {
	drafts ports.DraftStore
	gen    domain.IDGenerator
	logger *slog.Logger

	requests        *prometheus.CounterVec
	compileDuration prometheus.Histogram
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithIDGenerator sets the generator used for documents without explicit
// node ids. Defaults to UUIDv7.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(s *Server) { s.gen = gen }
}

// NewHandler builds the HTTP handler. Each handler carries its own metrics
// registry so parallel servers (and tests) do not collide.
func NewHandler(drafts ports.DraftStore, opts ...Option) http.Handler {
	s := &Server{
		drafts: drafts,
		gen:    domain.UUIDGenerator{},
		logger: slog.Default(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "espalier_compile_duration_seconds",
				Help: "Duration of graph to ruleset compilations",
			},
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(s.requests, s.compileDuration)

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Post("/compile", s.Compile)
	r.Post("/validate", s.Validate)

	r.Get("/drafts", s.ListDrafts)
	r.Put("/drafts/{name}", s.SaveDraft)
	r.Get("/drafts/{name}", s.GetDraft)
	r.Delete("/drafts/{name}", s.DeleteDraft)
	r.Get("/drafts/{name}/ruleset", s.GetDraftRuleset)
	r.Get("/drafts/{name}/graph", s.GetDraftGraph)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) count(route string, status int) {
	s.requests.WithLabelValues(route, fmt.Sprintf("%d", status)).Inc()
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error    string              `json:"error"`
	Findings []validator.Finding `json:"findings,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, route string, status int, err error, findings []validator.Finding) {
	s.count(route, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Findings: findings})
}

func (s *Server) writeRuleset(w http.ResponseWriter, route string, rs *ruleset.Ruleset) {
	data, err := rs.MarshalPretty()
	if err != nil {
		s.writeError(w, route, http.StatusInternalServerError, err, nil)
		s.logger.Error("ruleset encode failed", "err", err)
		return
	}
	s.count(route, http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// loadDocument parses a workflow document from a request body.
func (s *Server) loadDocument(r *http.Request) (*document.Document, error) {
	return document.Load(r.Body)
}

// Compile handles POST /compile. The body is a workflow document (YAML or
// JSON); the response is the compiled ruleset. With ?strict=1 validation
// errors abort the compilation with 422.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	const route = "compile"

	doc, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, route, http.StatusBadRequest, err, nil)
		s.logger.Warn("compile: invalid document", "err", err)
		return
	}

	store, err := doc.Materialize(s.gen)
	if err != nil {
		s.writeError(w, route, http.StatusBadRequest, err, nil)
		s.logger.Warn("compile: materialize failed", "err", err)
		return
	}

	nodes, conns := store.Nodes(), store.Connections()
	if r.URL.Query().Get("strict") == "1" {
		findings := validator.Check(nodes, conns)
		if validator.HasErrors(findings) {
			s.writeError(w, route, http.StatusUnprocessableEntity, errors.New("graph validation failed"), findings)
			return
		}
	}

	start := time.Now()
	rs, err := ruleset.Compile(nodes, conns)
	if err != nil {
		s.writeError(w, route, http.StatusUnprocessableEntity, err, nil)
		s.logger.Warn("compile failed", "err", err)
		return
	}
	s.compileDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("compiled graph", "name", doc.Name, "nodes", len(nodes), "connections", len(conns))
	s.writeRuleset(w, route, rs)
}

// Validate handles POST /validate and returns the validator findings for a
// workflow document without compiling it.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	const route = "validate"

	doc, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, route, http.StatusBadRequest, err, nil)
		return
	}
	store, err := doc.Materialize(s.gen)
	if err != nil {
		s.writeError(w, route, http.StatusBadRequest, err, nil)
		return
	}

	findings := validator.Check(store.Nodes(), store.Connections())
	resp := struct {
		Valid    bool                `json:"valid"`
		Findings []validator.Finding `json:"findings"`
	}{
		Valid:    !validator.HasErrors(findings),
		Findings: findings,
	}
	if resp.Findings == nil {
		resp.Findings = []validator.Finding{}
	}

	s.count(route, http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SaveDraft handles PUT /drafts/{name}. The body replaces any existing
// draft with that name.
func (s *Server) SaveDraft(w http.ResponseWriter, r *http.Request) {
	const route = "save_draft"
	name := chi.URLParam(r, "name")

	doc, err := s.loadDocument(r)
	if err != nil {
		s.writeError(w, route, http.StatusBadRequest, err, nil)
		return
	}
	// Materialize to reject structurally broken drafts before storing.
	if _, err := doc.Materialize(s.gen); err != nil {
		s.writeError(w, route, http.StatusBadRequest, err, nil)
		return
	}

	if err := s.drafts.Save(r.Context(), name, doc); err != nil {
		s.writeError(w, route, http.StatusInternalServerError, err, nil)
		s.logger.Error("draft save failed", "name", name, "err", err)
		return
	}

	s.logger.Info("draft saved", "name", name, "nodes", len(doc.Nodes))
	s.count(route, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

// GetDraft handles GET /drafts/{name} and returns the stored document as
// YAML.
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	const route = "get_draft"
	name := chi.URLParam(r, "name")

	doc, err := s.drafts.Load(r.Context(), name)
	if err != nil {
		s.writeDraftError(w, route, name, err)
		return
	}

	s.count(route, http.StatusOK)
	w.Header().Set("Content-Type", "text/yaml")
	if err := doc.Save(w); err != nil {
		s.logger.Error("draft encode failed", "name", name, "err", err)
	}
}

// DeleteDraft handles DELETE /drafts/{name}. Deletion is idempotent.
func (s *Server) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	const route = "delete_draft"
	name := chi.URLParam(r, "name")

	if err := s.drafts.Delete(r.Context(), name); err != nil {
		s.writeError(w, route, http.StatusInternalServerError, err, nil)
		s.logger.Error("draft delete failed", "name", name, "err", err)
		return
	}
	s.count(route, http.StatusNoContent)
	w.WriteHeader(http.StatusNoContent)
}

// ListDrafts handles GET /drafts.
func (s *Server) ListDrafts(w http.ResponseWriter, r *http.Request) {
	const route = "list_drafts"

	names, err := s.drafts.List(r.Context())
	if err != nil {
		s.writeError(w, route, http.StatusInternalServerError, err, nil)
		return
	}
	if names == nil {
		names = []string{}
	}

	s.count(route, http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"drafts": names})
}

// GetDraftRuleset handles GET /drafts/{name}/ruleset and compiles the
// stored draft.
func (s *Server) GetDraftRuleset(w http.ResponseWriter, r *http.Request) {
	const route = "draft_ruleset"
	name := chi.URLParam(r, "name")

	store, ok := s.materializeDraft(w, route, name, r)
	if !ok {
		return
	}

	start := time.Now()
	rs, err := ruleset.Compile(store.Nodes(), store.Connections())
	if err != nil {
		s.writeError(w, route, http.StatusUnprocessableEntity, err, nil)
		return
	}
	s.compileDuration.Observe(time.Since(start).Seconds())
	s.writeRuleset(w, route, rs)
}

// GetDraftGraph handles GET /drafts/{name}/graph and renders the stored
// draft as a Mermaid flowchart.
func (s *Server) GetDraftGraph(w http.ResponseWriter, r *http.Request) {
	const route = "draft_graph"
	name := chi.URLParam(r, "name")

	store, ok := s.materializeDraft(w, route, name, r)
	if !ok {
		return
	}

	s.count(route, http.StatusOK)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, presentation.GenerateMermaid(store.Nodes(), store.Connections()))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) materializeDraft(w http.ResponseWriter, route, name string, r *http.Request) (*graph.Store, bool) {
	doc, err := s.drafts.Load(r.Context(), name)
	if err != nil {
		s.writeDraftError(w, route, name, err)
		return nil, false
	}
	st, err := doc.Materialize(s.gen)
	if err != nil {
		s.writeError(w, route, http.StatusUnprocessableEntity, err, nil)
		return nil, false
	}
	return st, true
}

func (s *Server) writeDraftError(w http.ResponseWriter, route, name string, err error) {
	if errors.Is(err, domain.ErrDraftNotFound) {
		s.writeError(w, route, http.StatusNotFound, fmt.Errorf("draft %q: %w", name, err), nil)
		return
	}
	s.writeError(w, route, http.StatusInternalServerError, err, nil)
	s.logger.Error("draft load failed", "name", name, "err", err)
}
