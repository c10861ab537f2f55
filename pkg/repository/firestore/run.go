package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// runDoc is the Firestore document representation of model.ResearchRun
type runDoc struct {
	ID           string    `firestore:"ID"`
	UserID       string    `firestore:"UserID"`
	Query        string    `firestore:"Query"`
	Status       string    `firestore:"Status"`
	FinalReport  string    `firestore:"FinalReport"`
	ErrorMessage string    `firestore:"ErrorMessage"`
	LogSeq       int64     `firestore:"LogSeq"`
	CreatedAt    time.Time `firestore:"CreatedAt"`
	UpdatedAt    time.Time `firestore:"UpdatedAt"`
}

func toRunDoc(r *model.ResearchRun) *runDoc {
	return &runDoc{
		ID:           string(r.ID),
		UserID:       string(r.UserID),
		Query:        r.Query,
		Status:       string(r.Status),
		FinalReport:  r.FinalReport,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromRunDoc(d *runDoc) *model.ResearchRun {
	return &model.ResearchRun{
		ID:           types.RunID(d.ID),
		UserID:       types.UserID(d.UserID),
		Query:        d.Query,
		Status:       types.RunStatus(d.Status),
		FinalReport:  d.FinalReport,
		ErrorMessage: d.ErrorMessage,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type runRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRunRepository(client *firestore.Client) *runRepository {
	return &runRepository{client: client}
}

func (r *runRepository) runRef(runID types.RunID) *firestore.DocumentRef {
	return runsRef(r.client, r.collectionPrefix).Doc(string(runID))
}

func (r *runRepository) Create(ctx context.Context, run *model.ResearchRun) (*model.ResearchRun, error) {
	created := *run
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.UpdatedAt = created.CreatedAt

	if _, err := r.runRef(created.ID).Create(ctx, toRunDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create run", goerr.V("runID", created.ID))
	}

	return &created, nil
}

func (r *runRepository) Get(ctx context.Context, userID types.UserID, runID types.RunID) (*model.ResearchRun, error) {
	snap, err := r.runRef(runID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("runID", runID))
	}

	var d runDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal run", goerr.V("runID", runID))
	}

	// Ownership is part of the lookup key: a foreign run is indistinguishable
	// from a missing one.
	if d.UserID != string(userID) {
		return nil, nil
	}

	return fromRunDoc(&d), nil
}

func (r *runRepository) List(ctx context.Context, userID types.UserID) ([]*model.ResearchRun, error) {
	query := runsRef(r.client, r.collectionPrefix).
		Where("UserID", "==", string(userID)).
		OrderBy("CreatedAt", firestore.Desc)

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list runs", goerr.V("userID", userID))
	}

	runs := make([]*model.ResearchRun, 0, len(snaps))
	for _, snap := range snaps {
		var d runDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal run", goerr.V("doc", snap.Ref.ID))
		}
		runs = append(runs, fromRunDoc(&d))
	}

	return runs, nil
}

func (r *runRepository) MarkInProgress(ctx context.Context, runID types.RunID) error {
	return r.transition(ctx, runID, types.RunStatusInProgress, nil, nil)
}

func (r *runRepository) Complete(ctx context.Context, runID types.RunID, report string, citations []*model.Citation) error {
	extra := []firestore.Update{
		{Path: "FinalReport", Value: report},
	}
	return r.transition(ctx, runID, types.RunStatusCompleted, extra, citations)
}

func (r *runRepository) Fail(ctx context.Context, runID types.RunID, message string) error {
	extra := []firestore.Update{
		{Path: "ErrorMessage", Value: message},
	}
	return r.transition(ctx, runID, types.RunStatusFailed, extra, nil)
}

// transition applies a status change in a transaction so that the status
// check, the run update and the citation writes commit atomically.
func (r *runRepository) transition(ctx context.Context, runID types.RunID, next types.RunStatus, extra []firestore.Update, citations []*model.Citation) error {
	runRef := r.runRef(runID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(runRef)
		if err != nil {
			return goerr.Wrap(err, "failed to get run for transition")
		}

		var d runDoc
		if err := snap.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal run for transition")
		}

		current := types.RunStatus(d.Status)
		if !current.CanTransitionTo(next) {
			return goerr.New("invalid status transition",
				goerr.V("from", current),
				goerr.V("to", next),
			)
		}

		for i, c := range citations {
			citRef := runRef.Collection(citationsCollection).Doc(fmt.Sprintf("%06d", i+1))
			if err := tx.Set(citRef, toCitationDoc(i+1, c)); err != nil {
				return goerr.Wrap(err, "failed to write citation", goerr.V("url", c.URL))
			}
		}

		updates := append([]firestore.Update{
			{Path: "Status", Value: string(next)},
			{Path: "UpdatedAt", Value: time.Now().UTC()},
		}, extra...)

		return tx.Update(runRef, updates)
	})
	if err != nil {
		return goerr.Wrap(err, "run transition failed",
			goerr.V("runID", runID),
			goerr.V("to", next),
		)
	}

	return nil
}
