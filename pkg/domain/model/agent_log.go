package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// AgentLogEntry is one milestone in a run's append-only observability feed.
// Seq is assigned by the repository on append and forms a contiguous,
// strictly increasing series starting at 1 within a run.
type AgentLogEntry struct {
	RunID     types.RunID
	Seq       int64
	Action    types.LogAction
	Payload   LogPayload
	CreatedAt time.Time
}

// LogPayload is the tagged, kind-specific payload of an AgentLogEntry
type LogPayload interface {
	Action() types.LogAction
}

// StatusPayload is a human-readable pipeline progress message
type StatusPayload struct {
	Message string `json:"message"`
}

func (StatusPayload) Action() types.LogAction { return types.LogActionStatus }

// PlanPayload records the planner's routing decision and derived queries
type PlanPayload struct {
	Route        types.Route `json:"route"`
	WebQueries   []string    `json:"web_queries,omitempty"`
	ArxivQueries []string    `json:"arxiv_queries,omitempty"`
}

func (PlanPayload) Action() types.LogAction { return types.LogActionPlan }

// ChunkPayload carries one incremental fragment of the synthesized report
type ChunkPayload struct {
	Content string `json:"content"`
}

func (ChunkPayload) Action() types.LogAction { return types.LogActionResponseChunk }

// ErrorPayload records a pipeline failure, fatal or degraded
type ErrorPayload struct {
	Message string `json:"message"`
}

func (ErrorPayload) Action() types.LogAction { return types.LogActionError }

// EncodePayload serializes a payload for persistence
func EncodePayload(p LogPayload) (string, error) {
	if p == nil {
		return "", goerr.New("log payload is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode log payload",
			goerr.V("action", p.Action()),
		)
	}
	return string(data), nil
}

// DecodePayload deserializes a persisted payload by its action kind
func DecodePayload(action types.LogAction, data string) (LogPayload, error) {
	var p LogPayload
	switch action {
	case types.LogActionStatus:
		p = &StatusPayload{}
	case types.LogActionPlan:
		p = &PlanPayload{}
	case types.LogActionResponseChunk:
		p = &ChunkPayload{}
	case types.LogActionError:
		p = &ErrorPayload{}
	default:
		return nil, goerr.New("unknown log action", goerr.V("action", action))
	}

	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, goerr.Wrap(err, "failed to decode log payload",
			goerr.V("action", action),
		)
	}
	return p, nil
}
