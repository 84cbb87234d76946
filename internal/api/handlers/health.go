package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relayaudit/credprobe/internal/api/models"
	"github.com/relayaudit/credprobe/internal/stats"
)

// Health godoc
// @Summary Health check
// @Description Returns server health status
// @Tags system
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats godoc
// @Summary Server statistics
// @Description Returns runtime statistics including host CPU/memory usage and probe counters
// @Tags system
// @Produce json
// @Success 200 {object} models.ServerStatsResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	uptime := time.Since(h.startTime)

	cpuSnap, memSnap := stats.Host(200 * time.Millisecond)

	resp := models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU: models.CPUStats{
			NumCPU:      cpuSnap.NumCPU,
			UsedPercent: cpuSnap.UsedPercent,
			IdlePercent: cpuSnap.IdlePercent,
		},
		Memory: models.MemoryStats{
			TotalMB:     memSnap.TotalMB,
			FreeMB:      memSnap.FreeMB,
			UsedMB:      memSnap.UsedMB,
			UsedPercent: memSnap.UsedPercent,
		},
		Probe: h.getProbeStats(),
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getProbeStats() models.ProbeStatsResponse {
	if h.probe == nil {
		return models.ProbeStatsResponse{}
	}
	snap := h.probe.Snapshot()
	return models.ProbeStatsResponse{
		AttemptsTotal:  snap.AttemptsTotal,
		SuccessesTotal: snap.SuccessesTotal,
		RunsTotal:      snap.RunsTotal,
		RunsInFlight:   snap.RunsInFlight,
	}
}
