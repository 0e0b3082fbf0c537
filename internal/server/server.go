package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocraft/dbr/v2"

	"github.com/dukerupert/homeeasy/internal/app"
	"github.com/dukerupert/homeeasy/internal/auth"
	"github.com/dukerupert/homeeasy/internal/config"
	"github.com/dukerupert/homeeasy/internal/handler"
	"github.com/dukerupert/homeeasy/internal/middleware"
	ws "github.com/dukerupert/homeeasy/internal/websocket"
)

type Server struct {
	conn         *dbr.Connection
	hub          *ws.Hub
	clientH      *handler.ClientHandler
	requirementH *handler.RequirementHandler
	pipelineH    *handler.PipelineHandler
	staff        auth.Accounts
	rateLimiter  *middleware.RateLimiter
	rateLimit    config.RateLimitConfig
	origins      []string
	logger       *slog.Logger
}

// New wires the HTTP handlers over the stores in a.
func New(a *app.App) *Server {
	logger := a.Logger
	hub := ws.NewHub(logger.With("component", "websocket"))
	cfg := a.Config

	return &Server{
		conn:         a.Conn,
		hub:          hub,
		clientH:      handler.NewClientHandler(a.Clients, a.Roster, hub, logger.With("component", "clients")),
		requirementH: handler.NewRequirementHandler(a.Requirements, a.Validator, hub, logger.With("component", "requirements")),
		pipelineH:    handler.NewPipelineHandler(a.Schedules, a.Dead, a.Revenue, a.Validator, hub, logger.With("component", "pipeline")),
		staff:        auth.Accounts(cfg.Staff),
		rateLimiter:  middleware.NewRateLimiter(),
		rateLimit:    cfg.RateLimit,
		origins:      cfg.AllowedOrigins,
		logger:       logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the change feed hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireStaff(s.staff)(protectedMux))

	var h http.Handler = outerMux
	h = middleware.Recover(s.logger.With("component", "recover"))(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.conn.PingContext(ctx); err != nil {
		s.logger.Warn("health check ping failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}` + "\n"))
}

// limited rate-limits a submission route per staff member or client IP.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.StaffOrIP, s.rateLimit.Requests, s.rateLimit.Window)(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins, s.logger.With("component", "websocket")))

	// Roster
	mux.HandleFunc("GET /api/clients", s.clientH.List)
	mux.Handle("POST /api/clients", s.limited(s.clientH.Create))
	mux.HandleFunc("GET /api/clients/{id}", s.clientH.Get)

	// Requirement intake
	mux.Handle("POST /api/clients/{id}/requirements", s.limited(s.requirementH.Submit))
	mux.HandleFunc("GET /api/clients/{id}/requirements", s.requirementH.ListByClient)
	mux.HandleFunc("GET /api/clients/{id}/requirements/current", s.requirementH.Current)
	mux.HandleFunc("GET /api/requirements/{id}", s.requirementH.Get)
	mux.HandleFunc("POST /api/requirements/validate", s.requirementH.Validate)

	// Pipeline
	mux.Handle("POST /api/clients/{id}/schedules", s.limited(s.pipelineH.CreateSchedule))
	mux.HandleFunc("GET /api/clients/{id}/schedules", s.pipelineH.ListSchedules)
	mux.Handle("POST /api/clients/{id}/dead", s.limited(s.pipelineH.MarkDead))
	mux.HandleFunc("GET /api/clients/{id}/dead", s.pipelineH.ListDead)
	mux.Handle("POST /api/revenue", s.limited(s.pipelineH.CreateRevenue))
	mux.HandleFunc("GET /api/revenue/{id}", s.pipelineH.GetRevenue)
	mux.HandleFunc("GET /api/clients/{id}/revenue", s.pipelineH.ListRevenue)
}
