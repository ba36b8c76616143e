// licita/pkg/server/server.go

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rules"
)

const (
	DefaultMaxUploadBytes int64 = 20 << 20
	DefaultStatsInterval        = 5 * time.Second
	shutdownTimeout             = 10 * time.Second
)

type Config struct {
	Rules          []rules.Rule
	MaxUploadBytes int64
	StatsInterval  time.Duration
}

type Server struct {
	rules          []rules.Rule
	maxUploadBytes int64
	stats          *Stats
	hub            *Hub
}

// New builds a Server around a fixed rule table. Zero config values fall
// back to the defaults.
func New(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}
	stats := NewStats()
	return &Server{
		rules:          cfg.Rules,
		maxUploadBytes: cfg.MaxUploadBytes,
		stats:          stats,
		hub:            NewHub(stats, cfg.StatsInterval),
	}
}

func (s *Server) Stats() *Stats {
	return s.stats
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/events", s.hub.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/categories", s.handleCategories)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/extract", s.handleExtract)
		r.Post("/export-docx", s.handleExportDOCX)
		r.Post("/clauses", s.handleClauses)
	})
	return r
}

// Run serves HTTP on addr and the stats feed until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Info().Str("address", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return logging.NewError(logging.ErrorTypeTransport, "http server failed", err,
			map[string]interface{}{"address": addr})
	case <-ctx.Done():
	}

	logging.Logger.Info().Msg("Shutting down HTTP server")
	stopHub()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return logging.NewError(logging.ErrorTypeTransport, "http shutdown failed", err, nil)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
