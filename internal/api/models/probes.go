package models

import "time"

// StartProbeRequest starts a new credential-probing run against one SMTP
// target.
type StartProbeRequest struct {
	Host               string   `json:"host" binding:"required"`
	Port               int      `json:"port"`
	AuthMethod         string   `json:"auth_method"`
	UseTLS             bool     `json:"use_tls"`
	TimeoutSeconds     int      `json:"timeout_seconds"`
	MaxRetries         int      `json:"max_retries"`
	EHLODomain         string   `json:"ehlo_domain"`
	Usernames          []string `json:"usernames" binding:"required"`
	Passwords          []string `json:"passwords" binding:"required"`
	Parallelism        int      `json:"parallelism"`
	StopOnFirstSuccess bool     `json:"stop_on_first_success"`
}

// OutcomeResponse is one recovered credential as surfaced by the control
// API. Password is never echoed back in plaintext; only its length
// survives, which is enough to confirm an outcome was recorded without
// putting the recovered secret on the wire a second time.
type OutcomeResponse struct {
	Username       string    `json:"username"`
	PasswordLength int       `json:"password_length"`
	ResponseCode   int       `json:"response_code"`
	ResponseText   string    `json:"response_text"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProbeResponse describes one run's configuration and lifecycle state.
type ProbeResponse struct {
	ID          string     `json:"id"`
	Host        string     `json:"host"`
	Port        uint16     `json:"port"`
	AuthMethod  string     `json:"auth_method"`
	UseTLS      bool       `json:"use_tls"`
	Parallelism uint16     `json:"parallelism"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// ProbeResultsResponse is a run's full outcome history.
type ProbeResultsResponse struct {
	ProbeResponse
	Outcomes []OutcomeResponse `json:"outcomes"`
}

// ProbeListResponse lists every known run's summary.
type ProbeListResponse struct {
	Probes []ProbeResponse `json:"probes"`
}
