package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

type agentLogRepository struct {
	mu      sync.RWMutex
	entries map[types.RunID][]*model.AgentLogEntry
}

var _ interfaces.AgentLogRepository = &agentLogRepository{}

func newAgentLogRepository() *agentLogRepository {
	return &agentLogRepository{
		entries: make(map[types.RunID][]*model.AgentLogEntry),
	}
}

func copyLogEntry(e *model.AgentLogEntry) *model.AgentLogEntry {
	copied := *e
	return &copied
}

func (r *agentLogRepository) Append(ctx context.Context, runID types.RunID, payload model.LogPayload) (*model.AgentLogEntry, error) {
	// Round-trip through the persisted encoding so in-memory behavior
	// matches the durable backends.
	encoded, err := model.EncodePayload(payload)
	if err != nil {
		return nil, err
	}
	decoded, err := model.DecodePayload(payload.Action(), encoded)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &model.AgentLogEntry{
		RunID:     runID,
		Seq:       int64(len(r.entries[runID])) + 1,
		Action:    payload.Action(),
		Payload:   decoded,
		CreatedAt: time.Now().UTC(),
	}

	r.entries[runID] = append(r.entries[runID], entry)
	return copyLogEntry(entry), nil
}

func (r *agentLogRepository) List(ctx context.Context, runID types.RunID) ([]*model.AgentLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[runID]
	result := make([]*model.AgentLogEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, copyLogEntry(e))
	}
	return result, nil
}
