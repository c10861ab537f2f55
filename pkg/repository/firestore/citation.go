package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

const citationsCollection = "citations"

// citationDoc is the Firestore document representation of model.Citation
type citationDoc struct {
	RunID string `firestore:"RunID"`
	Order int    `firestore:"Order"`
	Title string `firestore:"Title"`
	URL   string `firestore:"URL"`
	Kind  string `firestore:"Kind"`
}

func toCitationDoc(order int, c *model.Citation) *citationDoc {
	return &citationDoc{
		RunID: string(c.RunID),
		Order: order,
		Title: c.Title,
		URL:   c.URL,
		Kind:  string(c.Kind),
	}
}

func fromCitationDoc(d *citationDoc) *model.Citation {
	return &model.Citation{
		RunID: types.RunID(d.RunID),
		Title: d.Title,
		URL:   d.URL,
		Kind:  types.SourceKind(d.Kind),
	}
}

type citationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCitationRepository(client *firestore.Client) *citationRepository {
	return &citationRepository{client: client}
}

func (r *citationRepository) List(ctx context.Context, runID types.RunID) ([]*model.Citation, error) {
	query := runsRef(r.client, r.collectionPrefix).Doc(string(runID)).
		Collection(citationsCollection).
		OrderBy("Order", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var citations []*model.Citation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate citations", goerr.V("runID", runID))
		}

		var d citationDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal citation", goerr.V("runID", runID))
		}

		citations = append(citations, fromCitationDoc(&d))
	}

	return citations, nil
}
