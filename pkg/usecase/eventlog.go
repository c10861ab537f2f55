package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
	"github.com/crrankyy/research-agent/pkg/utils/logging"
)

// EventLog is the append-only milestone feed of a run. It is the only
// channel through which pipeline progress becomes externally observable;
// clients poll List while the run is in progress.
type EventLog struct {
	repo interfaces.AgentLogRepository
}

// NewEventLog creates an event log emitter over the given repository
func NewEventLog(repo interfaces.AgentLogRepository) *EventLog {
	return &EventLog{repo: repo}
}

// Append persists a milestone entry; the repository assigns the next
// per-run sequence number.
func (e *EventLog) Append(ctx context.Context, runID types.RunID, payload model.LogPayload) (*model.AgentLogEntry, error) {
	entry, err := e.repo.Append(ctx, runID, payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append event log entry",
			goerr.V("runID", runID),
			goerr.V("action", payload.Action()),
		)
	}
	return entry, nil
}

// AppendBestEffort persists a milestone entry, logging instead of failing.
// Used on failure paths where the log entry must not mask the original error.
func (e *EventLog) AppendBestEffort(ctx context.Context, runID types.RunID, payload model.LogPayload) {
	if _, err := e.Append(ctx, runID, payload); err != nil {
		logging.From(ctx).Error("failed to append event log entry",
			"run_id", runID,
			"action", payload.Action().String(),
			"error", err.Error(),
		)
	}
}

// List returns all entries of a run in ascending sequence order
func (e *EventLog) List(ctx context.Context, runID types.RunID) ([]*model.AgentLogEntry, error) {
	entries, err := e.repo.List(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list event log entries", goerr.V("runID", runID))
	}
	return entries, nil
}
