package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/model"
)

// client implements Service over a Google Cloud Storage bucket
type client struct {
	bucket *storage.BucketHandle
}

// New creates a new report archive writing to the given GCS bucket
func New(ctx context.Context, bucketName string) (Service, error) {
	if bucketName == "" {
		return nil, goerr.New("archive bucket name is required")
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &client{
		bucket: gcs.Bucket(bucketName),
	}, nil
}

func (c *client) StoreReport(ctx context.Context, run *model.ResearchRun) error {
	if run.FinalReport == "" {
		return goerr.New("run has no final report to archive", goerr.V("runID", run.ID))
	}

	object := fmt.Sprintf("reports/%s/%s.md", run.UserID, run.ID)

	w := c.bucket.Object(object).NewWriter(ctx)
	w.ContentType = "text/markdown"
	w.Metadata = map[string]string{
		"run_id":  string(run.ID),
		"user_id": string(run.UserID),
	}

	if _, err := w.Write([]byte(run.FinalReport)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write report object",
			goerr.V("runID", run.ID),
			goerr.V("object", object),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize report object",
			goerr.V("runID", run.ID),
			goerr.V("object", object),
		)
	}

	return nil
}
