package types

import "fmt"

// RunStatus represents the lifecycle state of a research run
type RunStatus string

const (
	RunStatusQueued     RunStatus = "QUEUED"
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// AllRunStatuses returns all valid run statuses
func AllRunStatuses() []RunStatus {
	return []RunStatus{
		RunStatusQueued,
		RunStatusInProgress,
		RunStatusCompleted,
		RunStatusFailed,
	}
}

// IsValid checks if the run status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusQueued,
		RunStatusInProgress,
		RunStatusCompleted,
		RunStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status permits no further transition
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// CanTransitionTo reports whether a transition from s to next is allowed
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	switch s {
	case RunStatusQueued:
		return next == RunStatusInProgress || next == RunStatusFailed
	case RunStatusInProgress:
		return next == RunStatusCompleted || next == RunStatusFailed
	default:
		return false
	}
}

// String returns the string representation of the run status
func (s RunStatus) String() string {
	return string(s)
}

// ParseRunStatus parses a string into a RunStatus
func ParseRunStatus(s string) (RunStatus, error) {
	status := RunStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid run status: %s", s)
	}
	return status, nil
}
