// Package chi exposes the tool pages over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
	"github.com/kailas-cloud/boostube/internal/logger"
	healthuc "github.com/kailas-cloud/boostube/internal/usecase/health"
	"github.com/kailas-cloud/boostube/internal/usecase/page"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// pageSet is the page registry the server reads from.
type pageSet interface {
	Lookup(id tool.ID) (*page.Page, error)
	All() []*page.Page
}

// Server serves the tool pages.
type Server struct {
	pages         pageSet
	health        *healthuc.Service
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(pages pageSet, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pages:    pages,
		health:   health,
		logger:   logger,
		validate: newValidator(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownTool, http.StatusNotFound, codeToolNotFound),
		sentinelHandler(domain.ErrPipelineClosed, http.StatusServiceUnavailable, codePipelineClosed),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1/tools", func(r gochi.Router) {
		r.Get("/", s.ListTools)
		r.Route("/{tool}", func(r gochi.Router) {
			r.Get("/state", s.GetState)
			r.Post("/submit", s.Submit)
			r.Post("/reset", s.Reset)
			r.Get("/particles", s.GetParticles)
			r.Post("/particles/hit", s.HitParticles)
			r.Put("/viewport", s.SetViewport)
		})
	})
}

// ListTools handles GET /api/v1/tools.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	pages := s.pages.All()
	items := make([]toolResponse, len(pages))
	for i, p := range pages {
		items[i] = toolToResponse(p.Tool)
	}
	writeJSON(w, http.StatusOK, toolListResponse{Items: items})
}

// GetState handles GET /api/v1/tools/{tool}/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateToResponse(p.Tool.ID, p.Pipeline.State()))
}

// Submit handles POST /api/v1/tools/{tool}/submit. It blocks until the submission settles.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if !s.decode(w, r, &req) {
		return
	}

	st, err := p.Pipeline.Submit(r.Context(), req.Input)
	resp := stateToResponse(p.Tool.ID, st)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		resp.Ignored = true
	case errors.Is(err, domain.ErrStaleResponse):
		resp.Stale = true
	case r.Context().Err() != nil:
		// The client went away; nobody reads the response.
		logger.FromContext(r.Context()).Debug("Submission abandoned", zap.Error(err))
		return
	case err != nil:
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/v1/tools/{tool}/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateToResponse(p.Tool.ID, p.Pipeline.Reset()))
}

// GetParticles handles GET /api/v1/tools/{tool}/particles.
func (s *Server) GetParticles(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Animator.Snapshot())
}

// HitParticles handles POST /api/v1/tools/{tool}/particles/hit.
func (s *Server) HitParticles(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req hitRequest
	if !s.decode(w, r, &req) {
		return
	}

	removed := p.Animator.Hit(*req.X, *req.Y)
	writeJSON(w, http.StatusOK, hitResponse{Removed: removed, Remaining: p.Animator.Len()})
}

// SetViewport handles PUT /api/v1/tools/{tool}/viewport.
func (s *Server) SetViewport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req viewportRequest
	if !s.decode(w, r, &req) {
		return
	}

	p.Animator.Resize(req.Width, req.Height)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*page.Page, bool) {
	p, err := s.pages.Lookup(tool.ID(gochi.URLParam(r, "tool")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return nil, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownTool,
		domain.ErrPipelineClosed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
