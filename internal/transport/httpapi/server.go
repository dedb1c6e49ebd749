package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/internal/service/emotion"
	"github.com/sandevgo/tuskheart/pkg/log"
)

const maxBodyBytes = 16 * 1024

type Composer interface {
	Compose(ctx context.Context, req emotion.Request) (string, bool)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type composeRequest struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
	Crisis   bool   `json:"crisis"`
	Trigger  string `json:"trigger,omitempty"`
}

type composeResponse struct {
	Context string `json:"context"`
	OK      bool   `json:"ok"`
}

// Server exposes compose, health and Prometheus metrics over HTTP.
type Server struct {
	addr     string
	composer Composer
	db       Pinger
	httpSrv  *http.Server
}

func NewServer(addr string, composer Composer, db Pinger) *Server {
	s := &Server{addr: addr, composer: composer, db: db}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/v1/compose", s.handleCompose)
	return r
}

func (s *Server) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	s.httpSrv.BaseContext = func(net.Listener) context.Context { return ctx }

	logger.Info().Str("addr", s.addr).Msg("starting http server")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			log.FromCtx(r.Context()).Warn().Err(err).Msg("health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}

	trigger := audit.Trigger(req.Trigger)
	if trigger == "" {
		trigger = audit.TriggerChatTurn
	}

	text, ok := s.composer.Compose(r.Context(), emotion.Request{
		Subject:      core.Subject{UserID: req.UserID, DeviceID: req.DeviceID},
		IsCrisisMode: req.Crisis,
		Trigger:      trigger,
	})
	respondJSON(w, http.StatusOK, composeResponse{Context: text, OK: ok})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
