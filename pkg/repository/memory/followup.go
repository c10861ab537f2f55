package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

type followUpRepository struct {
	mu       sync.RWMutex
	messages map[types.RunID][]*model.FollowUpMessage
}

var _ interfaces.FollowUpRepository = &followUpRepository{}

func newFollowUpRepository() *followUpRepository {
	return &followUpRepository{
		messages: make(map[types.RunID][]*model.FollowUpMessage),
	}
}

func copyFollowUp(m *model.FollowUpMessage) *model.FollowUpMessage {
	copied := *m
	return &copied
}

func (r *followUpRepository) AppendExchange(ctx context.Context, runID types.RunID, question, answer *model.FollowUpMessage) ([]*model.FollowUpMessage, error) {
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := answer.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	q := copyFollowUp(question)
	q.RunID = runID
	q.CreatedAt = now
	a := copyFollowUp(answer)
	a.RunID = runID
	// The answer sorts strictly after its question
	a.CreatedAt = now.Add(time.Microsecond)

	r.messages[runID] = append(r.messages[runID], q, a)
	return []*model.FollowUpMessage{copyFollowUp(q), copyFollowUp(a)}, nil
}

func (r *followUpRepository) List(ctx context.Context, runID types.RunID) ([]*model.FollowUpMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages[runID]
	result := make([]*model.FollowUpMessage, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, copyFollowUp(m))
	}
	return result, nil
}
