package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/relayaudit/credprobe/internal/api/models"
	"github.com/relayaudit/credprobe/internal/smtp"
	"github.com/relayaudit/credprobe/internal/store"
)

// StartProbe godoc
// @Summary Start a credential-probing run
// @Description Starts a new SMTP credential-probing run against one target and returns immediately with the run id.
// @Tags probes
// @Accept json
// @Produce json
// @Param request body models.StartProbeRequest true "Probe parameters"
// @Success 202 {object} models.ProbeResponse
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /probes [post]
func (h *Handler) StartProbe(c *gin.Context) {
	var req models.StartProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	cfg := smtp.Config{
		Host:       req.Host,
		Port:       uint16(req.Port),
		AuthMethod: smtp.AuthMethod(req.AuthMethod),
		UseTLS:     req.UseTLS,
		MaxRetries: uint16(req.MaxRetries),
		EHLODomain: req.EHLODomain,
	}
	if req.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	params := smtp.Params{
		Usernames:          req.Usernames,
		Passwords:          req.Passwords,
		Parallelism:        uint16(req.Parallelism),
		StopOnFirstSuccess: req.StopOnFirstSuccess,
	}
	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	id := uuid.NewString()
	if h.store != nil {
		if err := h.store.CreateRun(id, cfg.Host, cfg.Port, string(cfg.AuthMethod), cfg.UseTLS, params.Parallelism); err != nil {
			if h.logger != nil {
				h.logger.Error("failed to persist new run", "error", err, "run_id", id)
			}
		}
	}
	if h.probe != nil {
		h.probe.RunStarted()
	}

	orch := smtp.NewOrchestrator(cfg, params, func(outcome smtp.Outcome) {
		if h.store != nil {
			if err := h.store.RecordOutcome(id, outcome.Username, outcome.Password, outcome.ResponseCode, outcome.ResponseText); err != nil && h.logger != nil {
				h.logger.Error("failed to persist outcome", "error", err, "run_id", id)
			}
		}
	}, nil, nil)

	h.trackRunning(id, orch)
	go h.runProbe(context.Background(), id, orch)

	c.JSON(http.StatusAccepted, models.ProbeResponse{
		ID:          id,
		Host:        cfg.Host,
		Port:        cfg.Port,
		AuthMethod:  string(cfg.AuthMethod),
		UseTLS:      cfg.UseTLS,
		Parallelism: params.Parallelism,
		Status:      string(store.StatusRunning),
	})
}

func (h *Handler) runProbe(ctx context.Context, id string, orch *smtp.Orchestrator) {
	defer h.untrackRunning(id)
	defer func() {
		if h.probe != nil {
			h.probe.RunFinished()
		}
	}()

	outcomes := orch.Run(ctx)

	attempts := orch.Attempts()
	if h.probe != nil {
		h.probe.AddAttempts(attempts, int64(len(outcomes)))
	}

	status := store.StatusCompleted
	if attempts < int64(orch.TotalPlanned()) {
		status = store.StatusStoppedEarly
	}
	if h.store != nil {
		if err := h.store.FinishRun(id, status); err != nil && h.logger != nil {
			h.logger.Error("failed to finish run", "error", err, "run_id", id)
		}
	}
}

// GetProbe godoc
// @Summary Get a run's status
// @Tags probes
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} models.ProbeResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /probes/{id} [get]
func (h *Handler) GetProbe(c *gin.Context) {
	id := c.Param("id")
	run, err := h.getRun(c, id)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, toProbeResponse(run))
}

// GetProbeResults godoc
// @Summary Get a run's recovered credentials
// @Description Passwords are never returned in plaintext; only their length is reported.
// @Tags probes
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} models.ProbeResultsResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /probes/{id}/results [get]
func (h *Handler) GetProbeResults(c *gin.Context) {
	id := c.Param("id")
	run, err := h.getRun(c, id)
	if err != nil {
		return
	}

	outcomes := make([]models.OutcomeResponse, 0, len(run.Outcomes))
	for _, o := range run.Outcomes {
		outcomes = append(outcomes, models.OutcomeResponse{
			Username:       o.Username,
			PasswordLength: len(o.Password),
			ResponseCode:   o.ResponseCode,
			ResponseText:   o.ResponseText,
			CreatedAt:      o.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, models.ProbeResultsResponse{
		ProbeResponse: toProbeResponse(run),
		Outcomes:      outcomes,
	})
}

// StopProbe godoc
// @Summary Stop a run early
// @Description Idempotent: stopping an already-finished or unknown run is not an error.
// @Tags probes
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} models.StatusResponse
// @Security ApiKeyAuth
// @Router /probes/{id}/stop [get]
func (h *Handler) StopProbe(c *gin.Context) {
	id := c.Param("id")
	if orch, ok := h.lookupRunning(id); ok {
		orch.Stop()
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "stopping"})
}

// ListProbes godoc
// @Summary List every known run
// @Tags probes
// @Produce json
// @Success 200 {object} models.ProbeListResponse
// @Security ApiKeyAuth
// @Router /probes [get]
func (h *Handler) ListProbes(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, models.ProbeListResponse{})
		return
	}
	runs, err := h.store.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	resp := models.ProbeListResponse{Probes: make([]models.ProbeResponse, 0, len(runs))}
	for i := range runs {
		resp.Probes = append(resp.Probes, toProbeResponse(&runs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getRun(c *gin.Context, id string) (*store.ProbeRun, error) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "run not found"})
		return nil, store.ErrRunNotFound
	}
	run, err := h.store.GetRun(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "run not found"})
		return nil, err
	}
	return run, nil
}

func toProbeResponse(run *store.ProbeRun) models.ProbeResponse {
	return models.ProbeResponse{
		ID:          run.ID,
		Host:        run.Host,
		Port:        run.Port,
		AuthMethod:  run.AuthMethod,
		UseTLS:      run.UseTLS,
		Parallelism: run.Parallelism,
		Status:      string(run.Status),
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
}
