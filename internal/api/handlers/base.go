// Package handlers implements the REST API endpoint handlers for credprobe.
//
// @title credprobe Control API
// @version 1.0
// @description REST API for starting and inspecting SMTP credential-probing runs.
//
// @contact.name relayaudit
// @contact.url https://github.com/relayaudit/credprobe
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8880
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package handlers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/relayaudit/credprobe/internal/config"
	"github.com/relayaudit/credprobe/internal/smtp"
	"github.com/relayaudit/credprobe/internal/stats"
	"github.com/relayaudit/credprobe/internal/store"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	probe     *stats.Probe
	startTime time.Time

	// running holds the active Orchestrator for every run still in
	// progress, keyed by run id, so StopProbe can reach it.
	runningMu sync.Mutex
	running   map[string]*smtp.Orchestrator
}

// New creates a new Handler with the given configuration and dependencies.
// st and probe may be nil in tests that only exercise Health.
func New(cfg *config.Config, logger *slog.Logger, st *store.Store, probe *stats.Probe) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		probe:     probe,
		startTime: time.Now(),
		running:   make(map[string]*smtp.Orchestrator),
	}
}

func (h *Handler) trackRunning(id string, o *smtp.Orchestrator) {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	h.running[id] = o
}

func (h *Handler) untrackRunning(id string) {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	delete(h.running, id)
}

func (h *Handler) lookupRunning(id string) (*smtp.Orchestrator, bool) {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	o, ok := h.running[id]
	return o, ok
}
