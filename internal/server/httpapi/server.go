// Package httpapi exposes the issue tracker over HTTP. Reads are public;
// mutations need Basic credentials or a bearer token from POST /login.
// Form posts are answered with redirects, JSON requests with JSON.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/logging"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
)

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Services bundles the business logic the handlers call into.
type Services struct {
	Issues      *services.IssueService
	Milestones  *services.MilestoneService
	Users       *services.UserService
	Attachments *services.AttachmentService
}

// ReadinessCheck is reported by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(context.Context) error
}

type Server struct {
	config   Config
	logger   logging.Logger
	svc      Services
	checks   []ReadinessCheck
	tokenTTL time.Duration
}

func NewServer(cfg Config, l logging.Logger, svc Services, tokenTTL time.Duration, checks ...ReadinessCheck) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		config:   cfg,
		logger:   l.With("module", "http_server"),
		svc:      svc,
		checks:   checks,
		tokenTTL: tokenTTL,
	}
}

// Handler returns the routed handler wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("GET /readyz", s.readyz)

	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("POST /users", s.registerUser)

	mux.HandleFunc("GET /issues", s.listIssues)
	mux.Handle("POST /issues", s.requireIdentity(s.createIssue))
	mux.HandleFunc("GET /issues/{id}", s.showIssue)
	mux.Handle("PUT /issues/{id}", s.requireIdentity(s.updateIssue))
	mux.Handle("DELETE /issues/{id}", s.requireIdentity(s.deleteIssue))
	mux.Handle("POST /issues/{id}", s.requireIdentity(s.overrideIssueMethod))
	mux.Handle("POST /issues/{id}/milestones/{milestoneID}", s.requireIdentity(s.attachMilestone))

	mux.HandleFunc("GET /milestones", s.listMilestones)
	mux.Handle("POST /milestones", s.requireIdentity(s.createMilestone))
	mux.HandleFunc("GET /milestones/{id}", s.showMilestone)

	mux.HandleFunc("GET /issues/{id}/attachments", s.listAttachments)
	mux.Handle("POST /issues/{id}/attachments", s.requireIdentity(s.requestUpload))
	mux.Handle("POST /attachments/{id}/uploaded", s.requireIdentity(s.markUploaded))
	mux.HandleFunc("GET /attachments/{id}", s.downloadAttachment)

	return s.recoverPanics(s.logRequests(s.withRequestID(s.authenticate(mux))))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.config.Addr == "" {
		return errors.New("addr is required")
	}

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	type checkResult struct {
		Name       string `json:"name"`
		Status     string `json:"status"`
		DurationMs int64  `json:"duration_ms"`
		Error      string `json:"error,omitempty"`
	}

	results := make([]checkResult, 0, len(s.checks))
	ready := true
	for _, check := range s.checks {
		start := time.Now()
		res := checkResult{Name: check.Name, Status: "ok"}
		if err := check.Check(r.Context()); err != nil {
			ready = false
			res.Status = "fail"
			res.Error = err.Error()
		}
		res.DurationMs = time.Since(start).Milliseconds()
		results = append(results, res)
	}

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "checks": results})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": results})
}
