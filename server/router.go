// Package server exposes the bot's HTTP surface: health, metrics and the
// calendar handoff endpoints.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"slot-bot/logger"
)

// Pinger is anything /healthz should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handoff serves the picker page and accepts its submissions.
type Handoff interface {
	Picker(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
}

// Config holds router configuration
type Config struct {
	Logger         *zap.Logger
	Handoff        Handoff
	MetricsHandler http.Handler
	Checks         map[string]Pinger
	CheckTimeout   time.Duration
}

// NewRouter creates a chi router with all routes configured
func NewRouter(cfg Config) http.Handler {
	log := logger.OrNop(cfg.Logger)
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 2 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", health(cfg.Checks, cfg.CheckTimeout, log))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.Handoff != nil {
		r.Get("/picker", cfg.Handoff.Picker)
		r.Post("/handoff/return", cfg.Handoff.Return)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func health(checks map[string]Pinger, timeout time.Duration, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		code := http.StatusOK
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				log.Warn("health check failed", zap.String("check", name), zap.Error(err))
				if resp.Checks == nil {
					resp.Checks = make(map[string]string)
				}
				resp.Checks[name] = err.Error()
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
