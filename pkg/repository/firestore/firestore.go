package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
)

// Firestore is the durable repository backed by Cloud Firestore.
// Layout: runs/{runID} with subcollections logs/{seq}, citations/{n} and
// messages/{messageID}.
type Firestore struct {
	client   *firestore.Client
	run      *runRepository
	agentLog *agentLogRepository
	citation *citationRepository
	followUp *followUpRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the root collection name, used to isolate
// test data within a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.run.collectionPrefix = prefix
		f.agentLog.collectionPrefix = prefix
		f.citation.collectionPrefix = prefix
		f.followUp.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:   client,
		run:      newRunRepository(client),
		agentLog: newAgentLogRepository(client),
		citation: newCitationRepository(client),
		followUp: newFollowUpRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Run() interfaces.RunRepository {
	return f.run
}

func (f *Firestore) AgentLog() interfaces.AgentLogRepository {
	return f.agentLog
}

func (f *Firestore) Citation() interfaces.CitationRepository {
	return f.citation
}

func (f *Firestore) FollowUp() interfaces.FollowUpRepository {
	return f.followUp
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

const runsCollection = "runs"

func runsRef(client *firestore.Client, prefix string) *firestore.CollectionRef {
	return client.Collection(prefix + runsCollection)
}
