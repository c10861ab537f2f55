package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/types"
)

const MaxQueryLength = 2000

// ResearchRun is one end-to-end execution of the research pipeline for a
// single query. It is owned by the run lifecycle use case; status,
// FinalReport and ErrorMessage are mutated only through the repository's
// transition operations.
type ResearchRun struct {
	ID           types.RunID
	UserID       types.UserID
	Query        string
	Status       types.RunStatus
	FinalReport  string // non-empty only when Status is COMPLETED
	ErrorMessage string // non-empty only when Status is FAILED
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewResearchRun creates a QUEUED run for the given user and query
func NewResearchRun(userID types.UserID, query string) *ResearchRun {
	now := time.Now().UTC()
	return &ResearchRun{
		ID:        types.NewRunID(),
		UserID:    userID,
		Query:     query,
		Status:    types.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the run's structural and status invariants
func (r *ResearchRun) Validate() error {
	if r.ID == "" {
		return goerr.New("run ID is required")
	}
	if r.UserID == "" {
		return goerr.New("run user ID is required", goerr.V("runID", r.ID))
	}
	if r.Query == "" {
		return goerr.New("run query is required", goerr.V("runID", r.ID))
	}
	if len(r.Query) > MaxQueryLength {
		return goerr.New("run query is too long",
			goerr.V("runID", r.ID),
			goerr.V("length", len(r.Query)),
		)
	}
	if !r.Status.IsValid() {
		return goerr.New("invalid run status",
			goerr.V("runID", r.ID),
			goerr.V("status", r.Status),
		)
	}
	if (r.FinalReport != "") != (r.Status == types.RunStatusCompleted) {
		return goerr.New("final report must be set exactly when run is completed",
			goerr.V("runID", r.ID),
			goerr.V("status", r.Status),
		)
	}
	if (r.ErrorMessage != "") != (r.Status == types.RunStatusFailed) {
		return goerr.New("error message must be set exactly when run is failed",
			goerr.V("runID", r.ID),
			goerr.V("status", r.Status),
		)
	}
	return nil
}
