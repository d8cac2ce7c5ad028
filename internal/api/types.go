package api

import (
	"time"

	"loom/internal/learning"
)

// StatusReport is the status payload for one session.
type StatusReport struct {
	SessionID      string    `json:"session_id"`
	LearnerID      string    `json:"learner_id"`
	CurrentStage   string    `json:"current_stage"`
	StageLabel     string    `json:"stage_label"`
	Progress       int       `json:"progress"`
	RetryCount     int       `json:"retry_count"`
	ShouldContinue bool      `json:"should_continue"`
	Completed      bool      `json:"completed"`
	NextAction     string    `json:"next_action,omitempty"`
	Errors         []string  `json:"errors,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionListResponse wraps the session index payload.
type SessionListResponse struct {
	Sessions []StatusReport `json:"sessions"`
}

// RunRequest submits a learner profile for a new workflow run.
type RunRequest struct {
	Profile learning.LearnerProfile `json:"profile"`
}

// RunResponse reports the outcome of a synchronous run.
type RunResponse struct {
	SessionID string            `json:"session_id"`
	Completed bool              `json:"completed"`
	Errors    []string          `json:"errors,omitempty"`
	Package   *learning.Package `json:"package,omitempty"`
}

// PackageListResponse wraps the package catalog payload.
type PackageListResponse struct {
	Packages []*learning.Package `json:"packages"`
}

// HealthResponse is the healthz payload.
type HealthResponse struct {
	Status string `json:"status"`
}
