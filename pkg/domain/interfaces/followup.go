package interfaces

import (
	"context"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// FollowUpRepository defines the interface for follow-up chat persistence
type FollowUpRepository interface {
	// AppendExchange persists a question/answer pair as one unit and
	// returns the stored messages in append order
	AppendExchange(ctx context.Context, runID types.RunID, question, answer *model.FollowUpMessage) ([]*model.FollowUpMessage, error)

	// List retrieves all messages of a run ordered by creation time ascending
	List(ctx context.Context, runID types.RunID) ([]*model.FollowUpMessage, error)
}
