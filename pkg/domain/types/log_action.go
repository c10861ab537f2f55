package types

import "fmt"

// LogAction is the kind discriminator of an agent log entry
type LogAction string

const (
	LogActionStatus        LogAction = "status"
	LogActionPlan          LogAction = "plan"
	LogActionResponseChunk LogAction = "response_chunk"
	LogActionError         LogAction = "error"
)

// AllLogActions returns all valid log actions
func AllLogActions() []LogAction {
	return []LogAction{
		LogActionStatus,
		LogActionPlan,
		LogActionResponseChunk,
		LogActionError,
	}
}

// IsValid checks if the log action is valid
func (a LogAction) IsValid() bool {
	switch a {
	case LogActionStatus, LogActionPlan, LogActionResponseChunk, LogActionError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the log action
func (a LogAction) String() string {
	return string(a)
}

// ParseLogAction parses a string into a LogAction
func ParseLogAction(s string) (LogAction, error) {
	action := LogAction(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid log action: %s", s)
	}
	return action, nil
}
