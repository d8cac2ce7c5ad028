package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loom/internal/checkpoint"
	"loom/internal/learning"
	"loom/internal/library"
	"loom/internal/logging"
	"loom/internal/services"
	"loom/internal/workflow"
)

// Runner executes a workflow for a submitted profile. Satisfied by
// *workflow.Engine.
type Runner interface {
	Run(ctx context.Context, profile learning.LearnerProfile) workflow.Result
}

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Bind     string
	Token    string
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// Server serves session status, run submission, and the package catalog.
type Server struct {
	bind    string
	token   string
	logger  *slog.Logger
	status  *StatusService
	runner  Runner
	catalog *library.Store

	handler  http.Handler
	listener net.Listener
	server   *http.Server
}

// NewServer assembles the HTTP surface. catalog may be nil when no library
// database is configured; the package routes then report 404.
func NewServer(status *StatusService, runner Runner, catalog *library.Store, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		bind:    strings.TrimSpace(opts.Bind),
		token:   strings.TrimSpace(opts.Token),
		logger:  logging.NewComponentLogger(logger, "api-server"),
		status:  status,
		runner:  runner,
		catalog: catalog,
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", srv.handleHealth)
	if opts.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	router.Group(func(r chi.Router) {
		r.Use(srv.requireToken)
		r.Get("/api/sessions", srv.handleListSessions)
		r.Get("/api/sessions/{sessionID}/status", srv.handleSessionStatus)
		r.Post("/api/runs", srv.handleRun)
		r.Get("/api/packages", srv.handleListPackages)
		r.Get("/api/packages/{packageID}", srv.handleGetPackage)
	})
	srv.handler = router
	return srv
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start begins serving on the configured bind address and shuts down when ctx
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			provided := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if provided != s.token {
				s.writeError(w, http.StatusUnauthorized, "invalid or missing api token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	reports, err := s.status.ListSessions(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SessionListResponse{Sessions: reports})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	report, err := s.status.Status(r.Context(), sessionID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeError(w, http.StatusServiceUnavailable, "runner not configured")
		return
	}
	var request RunRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run request: "+err.Error())
		return
	}
	if strings.TrimSpace(request.Profile.Subject) == "" {
		s.writeError(w, http.StatusBadRequest, "profile.subject is required")
		return
	}

	result := s.runner.Run(r.Context(), request.Profile)
	if result.Err != nil {
		status := http.StatusInternalServerError
		if services.IsFatal(result.Err) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, result.Err.Error())
		return
	}
	if s.catalog != nil && result.Completed && result.Package != nil {
		if err := s.catalog.SavePackage(r.Context(), result.Package); err != nil {
			s.logger.Error("failed to catalog package",
				logging.String(logging.FieldSessionID, result.SessionID),
				logging.Error(err),
			)
		}
	}
	s.writeJSON(w, http.StatusOK, RunResponse{
		SessionID: result.SessionID,
		Completed: result.Completed,
		Errors:    result.Errors,
		Package:   result.Package,
	})
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.writeJSON(w, http.StatusOK, PackageListResponse{})
		return
	}
	packages, err := s.catalog.ListPackages(r.Context(), strings.TrimSpace(r.URL.Query().Get("learner")))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, PackageListResponse{Packages: packages})
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.writeError(w, http.StatusNotFound, "package not found")
		return
	}
	pkg, err := s.catalog.GetPackage(r.Context(), chi.URLParam(r, "packageID"))
	if errors.Is(err, library.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "package not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
