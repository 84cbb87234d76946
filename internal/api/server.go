// Package api provides the optional REST control API for credprobe.
// It exposes endpoints to start, inspect, and stop credential-probing
// runs via a Gin-based HTTP server, alongside health and host-stats
// endpoints.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relayaudit/credprobe/internal/api/handlers"
	"github.com/relayaudit/credprobe/internal/api/middleware"
	"github.com/relayaudit/credprobe/internal/config"
	"github.com/relayaudit/credprobe/internal/stats"
	"github.com/relayaudit/credprobe/internal/store"
)

// Server is the credprobe control API server.
//
// Security note: do not expose the API to untrusted networks without
// an API key configured.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds a Server wired to st for run history and probe for
// cross-run counters. Either may be nil, in which case the affected
// endpoints degrade gracefully (e.g. stats reports zeroed probe counters).
func New(cfg *config.Config, logger *slog.Logger, st *store.Store, probe *stats.Probe) *Server {
	if cfg == nil {
		panic("api.New: cfg is nil")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, logger, st, probe)
	RegisterRoutes(engine, h, cfg)

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, httpServer: httpServer}
}

// Addr returns the address the server will listen on.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the underlying gin.Engine, primarily for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
