// Package api provides the HTTP REST API server for newsense.
//
// It exposes company news sentiment analysis, the generated chart and
// audio artifacts, and a WebSocket feed of completed analyses.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/newsense/internal/config"
	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/internal/pipeline"
	"github.com/seenimoa/newsense/pkg/models"
)

// Version is reported by the health endpoint. Set by the binary.
var Version = "dev"

// Analyzer runs an analysis. *pipeline.Pipeline satisfies it.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	analyzer Analyzer
	wsHub    *WSHub
	log      *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, analyzer Analyzer, log *slog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		wsHub:    NewWSHub(),
		log:      logger.OrDefault(log),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM or
// ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()
	defer s.wsHub.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Analysis can take minutes: every article is fetched with pacing.
		r.With(middleware.Timeout(5*time.Minute)).Post("/analyze", s.handleAnalyze)

		// Artifacts
		r.Get("/audio/{filename}", s.handleAudio)
		r.Get("/chart", s.handleChart)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Company       string `json:"company"`
	GenerateAudio *bool  `json:"generate_audio,omitempty"` // default true
}

// AnalyzeResponse is the data of a successful analysis. Artifact fields
// hold bare filenames, fetchable from /api/v1/audio/{name} and /api/v1/chart.
type AnalyzeResponse struct {
	Company           string                    `json:"company"`
	Articles          []models.Article          `json:"articles"`
	SentimentAnalysis *models.AggregateAnalysis `json:"sentiment_analysis"`
	AudioFile         *string                   `json:"audio_file"`
	ChartFile         *string                   `json:"chart_file"`
}

// AnalysisEvent is broadcast to WebSocket clients after every analysis.
type AnalysisEvent struct {
	Company      string       `json:"company"`
	ArticleCount int          `json:"article_count"`
	OverallTrend models.Label `json:"overall_trend"`
	AverageScore float64      `json:"average_score"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    Version,
			"ws_clients": s.wsHub.ClientCount(),
			"time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	generateAudio := true
	if req.GenerateAudio != nil {
		generateAudio = *req.GenerateAudio
	}

	res, err := s.analyzer.Run(r.Context(), pipeline.Request{
		Company:       req.Company,
		GenerateAudio: generateAudio,
	})
	switch {
	case errors.Is(err, pipeline.ErrEmptyCompany):
		writeError(w, http.StatusBadRequest, "company is required")
		return
	case errors.Is(err, pipeline.ErrNoArticles):
		writeError(w, http.StatusNotFound, "No news articles found")
		return
	case err != nil:
		s.log.Error("analysis failed", "company", req.Company, "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "analysis_complete",
		Data: AnalysisEvent{
			Company:      res.Company,
			ArticleCount: len(res.Articles),
			OverallTrend: res.Analysis.OverallTrend,
			AverageScore: res.Analysis.AverageScore,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: AnalyzeResponse{
			Company:           res.Company,
			Articles:          res.Articles,
			SentimentAnalysis: res.Analysis,
			AudioFile:         baseName(res.AudioFile),
			ChartFile:         baseName(res.ChartFile),
		},
	})
}

// audioName matches the content-addressed names the audio renderer writes.
var audioName = regexp.MustCompile(`^[A-Za-z0-9_-]+\.mp3$`)

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !audioName.MatchString(name) {
		writeError(w, http.StatusNotFound, "Audio file not found")
		return
	}
	path := filepath.Join(s.cfg.Output.AudioDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "Audio file not found")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.Output.ChartDir, s.cfg.Output.ChartFile)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "no chart rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

// ============================================================
// Helpers
// ============================================================

func baseName(path string) *string {
	if path == "" {
		return nil
	}
	name := filepath.Base(path)
	return &name
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
