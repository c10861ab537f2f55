package interfaces

import (
	"context"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// AgentLogRepository defines the interface for the append-only run log.
// Append assigns the next per-run sequence number atomically; sequence
// numbers observed by List are contiguous and strictly increasing from 1.
type AgentLogRepository interface {
	// Append persists a new entry with the next sequence number for the run
	Append(ctx context.Context, runID types.RunID, payload model.LogPayload) (*model.AgentLogEntry, error)

	// List retrieves all entries of a run in ascending sequence order
	List(ctx context.Context, runID types.RunID) ([]*model.AgentLogEntry, error)
}
