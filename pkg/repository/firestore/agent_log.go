package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

const logsCollection = "logs"

// agentLogDoc is the Firestore document representation of model.AgentLogEntry.
// The payload is stored as its JSON encoding, discriminated by Action.
type agentLogDoc struct {
	RunID     string    `firestore:"RunID"`
	Seq       int64     `firestore:"Seq"`
	Action    string    `firestore:"Action"`
	Payload   string    `firestore:"Payload"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

func fromAgentLogDoc(d *agentLogDoc) (*model.AgentLogEntry, error) {
	action, err := types.ParseLogAction(d.Action)
	if err != nil {
		return nil, goerr.Wrap(err, "stored log entry has unknown action",
			goerr.V("runID", d.RunID),
			goerr.V("seq", d.Seq),
		)
	}

	payload, err := model.DecodePayload(action, d.Payload)
	if err != nil {
		return nil, goerr.Wrap(err, "stored log entry has invalid payload",
			goerr.V("runID", d.RunID),
			goerr.V("seq", d.Seq),
		)
	}

	return &model.AgentLogEntry{
		RunID:     types.RunID(d.RunID),
		Seq:       d.Seq,
		Action:    action,
		Payload:   payload,
		CreatedAt: d.CreatedAt,
	}, nil
}

type agentLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAgentLogRepository(client *firestore.Client) *agentLogRepository {
	return &agentLogRepository{client: client}
}

func (r *agentLogRepository) Append(ctx context.Context, runID types.RunID, payload model.LogPayload) (*model.AgentLogEntry, error) {
	encoded, err := model.EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	runRef := runsRef(r.client, r.collectionPrefix).Doc(string(runID))

	var appended *model.AgentLogEntry

	// The next sequence number comes from a counter on the run document;
	// the counter bump and the entry write commit together, which keeps the
	// series contiguous for any reader.
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(runRef)
		if err != nil {
			return goerr.Wrap(err, "failed to get run for log append")
		}

		var d runDoc
		if err := snap.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal run for log append")
		}

		seq := d.LogSeq + 1
		entry := &agentLogDoc{
			RunID:     string(runID),
			Seq:       seq,
			Action:    string(payload.Action()),
			Payload:   encoded,
			CreatedAt: time.Now().UTC(),
		}

		logRef := runRef.Collection(logsCollection).Doc(fmt.Sprintf("%08d", seq))
		if err := tx.Set(logRef, entry); err != nil {
			return goerr.Wrap(err, "failed to write log entry")
		}
		if err := tx.Update(runRef, []firestore.Update{
			{Path: "LogSeq", Value: seq},
		}); err != nil {
			return goerr.Wrap(err, "failed to bump log sequence")
		}

		decoded, err := model.DecodePayload(payload.Action(), encoded)
		if err != nil {
			return err
		}
		appended = &model.AgentLogEntry{
			RunID:     runID,
			Seq:       seq,
			Action:    payload.Action(),
			Payload:   decoded,
			CreatedAt: entry.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append log entry",
			goerr.V("runID", runID),
			goerr.V("action", payload.Action()),
		)
	}

	return appended, nil
}

func (r *agentLogRepository) List(ctx context.Context, runID types.RunID) ([]*model.AgentLogEntry, error) {
	query := runsRef(r.client, r.collectionPrefix).Doc(string(runID)).
		Collection(logsCollection).
		OrderBy("Seq", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var entries []*model.AgentLogEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate log entries", goerr.V("runID", runID))
		}

		var d agentLogDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal log entry", goerr.V("runID", runID))
		}

		entry, err := fromAgentLogDoc(&d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
