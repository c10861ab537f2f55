package interfaces

import (
	"context"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// RunRepository defines the interface for ResearchRun persistence.
// Status transitions happen only through MarkInProgress, Complete and Fail;
// there is no general update operation.
type RunRepository interface {
	// Create persists a new QUEUED run
	Create(ctx context.Context, run *model.ResearchRun) (*model.ResearchRun, error)

	// Get retrieves a run owned by the given user
	Get(ctx context.Context, userID types.UserID, runID types.RunID) (*model.ResearchRun, error)

	// List retrieves all runs of a user, newest first
	List(ctx context.Context, userID types.UserID) ([]*model.ResearchRun, error)

	// MarkInProgress transitions a QUEUED run to IN_PROGRESS
	MarkInProgress(ctx context.Context, runID types.RunID) error

	// Complete sets the final report, persists the citation set and
	// transitions the run to COMPLETED as a single atomic write. No reader
	// may observe the report without the COMPLETED status or vice versa.
	Complete(ctx context.Context, runID types.RunID, report string, citations []*model.Citation) error

	// Fail sets the error message and transitions the run to FAILED
	Fail(ctx context.Context, runID types.RunID, message string) error
}
