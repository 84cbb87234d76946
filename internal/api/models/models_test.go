// Package models_test provides behavior tests for the API models package.
package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/relayaudit/credprobe/internal/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_JSON(t *testing.T) {
	resp := models.ErrorResponse{Error: "something went wrong"}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ErrorResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "something went wrong", decoded.Error)
}

func TestStatusResponse_JSON(t *testing.T) {
	resp := models.StatusResponse{Status: "ok"}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.StatusResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestServerStatsResponse_JSON(t *testing.T) {
	startTime := time.Now()
	resp := models.ServerStatsResponse{
		Uptime:        "1h30m",
		UptimeSeconds: 5400,
		StartTime:     startTime,
		CPU: models.CPUStats{
			NumCPU:      8,
			UsedPercent: 25.5,
			IdlePercent: 74.5,
		},
		Memory: models.MemoryStats{
			TotalMB:     16384.0,
			FreeMB:      8192.0,
			UsedMB:      8192.0,
			UsedPercent: 50.0,
		},
		Probe: models.ProbeStatsResponse{
			AttemptsTotal:  1000,
			SuccessesTotal: 3,
			RunsTotal:      10,
			RunsInFlight:   1,
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ServerStatsResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "1h30m", decoded.Uptime)
	assert.Equal(t, int64(5400), decoded.UptimeSeconds)
	assert.Equal(t, 8, decoded.CPU.NumCPU)
	assert.InDelta(t, 25.5, decoded.CPU.UsedPercent, 0.001)
	assert.InDelta(t, 50.0, decoded.Memory.UsedPercent, 0.001)
	assert.EqualValues(t, 1000, decoded.Probe.AttemptsTotal)
}

func TestStartProbeRequest_JSON(t *testing.T) {
	req := models.StartProbeRequest{
		Host:        "mail.example.com",
		Port:        587,
		UseTLS:      true,
		Usernames:   []string{"alice", "bob"},
		Passwords:   []string{"hunter2"},
		Parallelism: 4,
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded models.StartProbeRequest
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", decoded.Host)
	assert.Equal(t, 587, decoded.Port)
	assert.True(t, decoded.UseTLS)
	assert.Len(t, decoded.Usernames, 2)
}

func TestOutcomeResponse_NeverCarriesPlaintextPassword(t *testing.T) {
	resp := models.OutcomeResponse{
		Username:       "alice",
		PasswordLength: 7,
		ResponseCode:   235,
		ResponseText:   "2.7.0 Authentication successful",
		CreatedAt:      time.Now(),
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), `"password_length":7`)

	var decoded models.OutcomeResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "alice", decoded.Username)
	assert.Equal(t, 235, decoded.ResponseCode)
}

func TestProbeResultsResponse_EmbedsProbeResponse(t *testing.T) {
	resp := models.ProbeResultsResponse{
		ProbeResponse: models.ProbeResponse{
			ID:     "run-1",
			Host:   "mail.example.com",
			Status: "completed",
		},
		Outcomes: []models.OutcomeResponse{
			{Username: "alice", PasswordLength: 7, ResponseCode: 235},
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ProbeResultsResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.ID)
	require.Len(t, decoded.Outcomes, 1)
	assert.Equal(t, "alice", decoded.Outcomes[0].Username)
}
