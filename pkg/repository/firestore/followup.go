package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

const messagesCollection = "messages"

// followUpDoc is the Firestore document representation of model.FollowUpMessage
type followUpDoc struct {
	ID        string    `firestore:"ID"`
	RunID     string    `firestore:"RunID"`
	Role      string    `firestore:"Role"`
	Content   string    `firestore:"Content"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

func toFollowUpDoc(m *model.FollowUpMessage) *followUpDoc {
	return &followUpDoc{
		ID:        string(m.ID),
		RunID:     string(m.RunID),
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func fromFollowUpDoc(d *followUpDoc) *model.FollowUpMessage {
	return &model.FollowUpMessage{
		ID:        types.MessageID(d.ID),
		RunID:     types.RunID(d.RunID),
		Role:      types.MessageRole(d.Role),
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

type followUpRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFollowUpRepository(client *firestore.Client) *followUpRepository {
	return &followUpRepository{client: client}
}

func (r *followUpRepository) messagesRef(runID types.RunID) *firestore.CollectionRef {
	return runsRef(r.client, r.collectionPrefix).Doc(string(runID)).Collection(messagesCollection)
}

func (r *followUpRepository) AppendExchange(ctx context.Context, runID types.RunID, question, answer *model.FollowUpMessage) ([]*model.FollowUpMessage, error) {
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := answer.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := *question
	q.RunID = runID
	q.CreatedAt = now
	a := *answer
	a.RunID = runID
	a.CreatedAt = now.Add(time.Microsecond)

	// Both messages commit in one transaction so a poller never sees a
	// question without its answer.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(r.messagesRef(runID).Doc(string(q.ID)), toFollowUpDoc(&q)); err != nil {
			return goerr.Wrap(err, "failed to write question message")
		}
		if err := tx.Set(r.messagesRef(runID).Doc(string(a.ID)), toFollowUpDoc(&a)); err != nil {
			return goerr.Wrap(err, "failed to write answer message")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append follow-up exchange", goerr.V("runID", runID))
	}

	return []*model.FollowUpMessage{&q, &a}, nil
}

func (r *followUpRepository) List(ctx context.Context, runID types.RunID) ([]*model.FollowUpMessage, error) {
	query := r.messagesRef(runID).OrderBy("CreatedAt", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*model.FollowUpMessage
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate follow-up messages", goerr.V("runID", runID))
		}

		var d followUpDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal follow-up message", goerr.V("runID", runID))
		}

		messages = append(messages, fromFollowUpDoc(&d))
	}

	return messages, nil
}
