package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// FollowUpMessage is one turn of a post-completion Q&A exchange scoped to a
// run's report. Messages are append-only and ordered by creation time; a
// follow-up exchange appends a user message and an agent message as one unit.
type FollowUpMessage struct {
	ID        types.MessageID
	RunID     types.RunID
	Role      types.MessageRole
	Content   string
	CreatedAt time.Time
}

// NewFollowUpMessage creates a message for the given run and role
func NewFollowUpMessage(runID types.RunID, role types.MessageRole, content string) *FollowUpMessage {
	return &FollowUpMessage{
		ID:        types.NewMessageID(),
		RunID:     runID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the message's structural invariants
func (m *FollowUpMessage) Validate() error {
	if m.RunID == "" {
		return goerr.New("follow-up message run ID is required")
	}
	if !m.Role.IsValid() {
		return goerr.New("invalid follow-up message role",
			goerr.V("runID", m.RunID),
			goerr.V("role", m.Role),
		)
	}
	if m.Content == "" {
		return goerr.New("follow-up message content is required",
			goerr.V("runID", m.RunID),
		)
	}
	return nil
}
