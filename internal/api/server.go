package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/MikeSquared-Agency/minutes/internal/processor"
	"github.com/MikeSquared-Agency/minutes/internal/store"
	"github.com/MikeSquared-Agency/minutes/internal/transcript"
)

// Runner executes a batch on demand.
type Runner interface {
	Run(ctx context.Context, req processor.RunRequest) ([]processor.FileResult, error)
	Stats() processor.RunStats
}

type TranscriptReader interface {
	GetTranscriptBySource(ctx context.Context, sourceID string) (*transcript.Record, error)
}

// ProcessResponse is returned by POST /api/v1/minutes/process.
type ProcessResponse struct {
	Results []processor.FileResult `json:"results"`
	Count   int                    `json:"count"`
}

type Server struct {
	router      *chi.Mux
	port        int
	runner      Runner
	transcripts TranscriptReader
	logger      *slog.Logger
	httpServer  *http.Server
}

func NewServer(port int, apiToken string, runner Runner, transcripts TranscriptReader, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:      router,
		port:        port,
		runner:      runner,
		transcripts: transcripts,
		logger:      logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/minutes/status", s.status)

	router.Group(func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/api/v1/minutes/process", s.process)
		r.Get("/api/v1/minutes/transcripts/{sourceID}", s.getTranscript)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// BearerAuthMiddleware rejects requests without the configured token. An empty
// token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":    "minutes",
		"status":   "ok",
		"last_run": s.runner.Stats(),
	})
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	var req processor.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	results, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.logger.Error("batch run failed", "meeting_url", req.MeetingURL, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if results == nil {
		results = []processor.FileResult{}
	}
	writeJSON(w, http.StatusOK, ProcessResponse{Results: results, Count: len(results)})
}

func (s *Server) getTranscript(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	rec, err := s.transcripts.GetTranscriptBySource(r.Context(), sourceID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transcript not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load transcript", "source_id", sourceID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
