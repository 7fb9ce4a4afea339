// Package api serves the local control panel: health, session status,
// vocabulary management, and metrics. It binds to loopback by default and
// carries no dictation logic of its own.
package api

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/snarg/dictate/internal/config"
	"github.com/snarg/dictate/internal/controller"
	"github.com/snarg/dictate/internal/metrics"
)

// StatusSource reports the controller's current state and counters.
type StatusSource interface {
	Stats() controller.Stats
}

// VocabStore is the vocabulary surface the panel edits.
type VocabStore interface {
	Snapshot() []string
	Add(phrase string) bool
	Remove(phrase string) bool
}

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewServer(cfg *config.Config, status StatusSource, store VocabStore, webFS fs.FS, version string, startTime time.Time, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(metrics.InstrumentHandler)

	health := NewHealthHandler(status, version, startTime)
	r.Get("/api/v1/health", health.ServeHTTP)
	r.Get("/api/v1/status", StatusHandler(status))

	vocab := NewVocabularyHandler(store)
	r.Get("/api/v1/vocabulary", vocab.List)
	r.Post("/api/v1/vocabulary", vocab.Add)
	r.Delete("/api/v1/vocabulary", vocab.Remove)

	r.Handle("/metrics", promhttp.Handler())

	// Embedded control-panel page
	r.Handle("/*", http.FileServer(http.FS(webFS)))

	return &Server{
		http: &http.Server{
			Addr:         cfg.UIAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("control panel starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("control panel shutting down")
	return s.http.Shutdown(ctx)
}
