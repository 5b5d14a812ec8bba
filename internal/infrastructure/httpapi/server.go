// Package httpapi exposes pipeline triggers and the review gate over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/usecase"
)

// Deps are the use cases served by the API.
type Deps struct {
	Pipeline *usecase.Pipeline
	Learner  *usecase.Learner
	Actions  *usecase.ActionService
	Logger   *slog.Logger
}

// Server is the trigger API.
type Server struct {
	deps   Deps
	router chi.Router
	logger *slog.Logger
}

// New builds the router.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{deps: deps, logger: log}
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pipeline", func(r chi.Router) {
			r.Post("/run", s.handleRun)
			r.Post("/collect", s.handleCollect)
			r.Post("/reprocess", s.handleReprocess)
			r.Post("/weekly-summary/{topicID}", s.handleWeeklySummary)
			r.Post("/compare/{category}", s.handleCompare)
		})
		r.Get("/feedback/analysis", s.handleFeedbackAnalysis)
		r.Get("/feedback/suggestions", s.handleSuggestions)
		r.Post("/principles/{id}/confidence", s.handleAdjustConfidence)
		r.Route("/actions", func(r chi.Router) {
			r.Get("/pending", s.handlePendingActions)
			r.Post("/{id}/confirm", s.handleConfirm)
			r.Post("/{id}/reject", s.handleReject)
			r.Post("/{id}/execute", s.handleExecute)
		})
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// --- Pipeline Handlers ---

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	result := s.deps.Pipeline.Run(r.Context(), usecase.RunOptions{TopicID: r.URL.Query().Get("topic_id")})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	outcomes, err := s.deps.Pipeline.Collect(r.Context(), r.URL.Query().Get("topic_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": outcomes})
}

func (s *Server) handleReprocess(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Pipeline.Reprocess(r.Context(), r.URL.Query().Get("topic_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reset": n})
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Pipeline.WeeklySummary(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Pipeline.CompareStack(r.Context(), r.URL.Query().Get("topic_id"), chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Feedback Handlers ---

func (s *Server) handleFeedbackAnalysis(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Learner.AnalyzeFeedback(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Learner.SuggestRefinements(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

func (s *Server) handleAdjustConfidence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta *float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"delta\": number}"})
		return
	}
	id := chi.URLParam(r, "id")
	confidence, err := s.deps.Learner.AdjustConfidence(r.Context(), id, *req.Delta)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"principle_id": id, "confidence": confidence})
}

// --- Action Handlers ---

func (s *Server) handlePendingActions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.deps.Actions.Pending(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if actions == nil {
		actions = []domain.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, s.deps.Actions.Confirm)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, s.deps.Actions.Reject)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	action, err := s.deps.Actions.MarkExecuted(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, action)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string) (domain.Action, error)) {
	var req struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	action, err := fn(r.Context(), chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, action)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownCategory):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrMisconfigured):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
