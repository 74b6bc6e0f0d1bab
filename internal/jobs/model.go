package jobs

import "time"

// Status is the lifecycle state of a tracked background job.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusRunning    Status = "running"
	StatusTerminated Status = "terminated"
)

// Record describes one named background job. Records are created on first
// start and never deleted; they only move between running and terminated.
type Record struct {
	Status  Status     `json:"status"`
	PID     int        `json:"pid,omitempty"`
	LastRun *time.Time `json:"last_run,omitempty"`
	LastEnd *time.Time `json:"last_end,omitempty"`
}
