package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

type runRepository struct {
	mu        sync.RWMutex
	runs      map[types.RunID]*model.ResearchRun
	citations *citationRepository
}

var _ interfaces.RunRepository = &runRepository{}

func newRunRepository(citations *citationRepository) *runRepository {
	return &runRepository{
		runs:      make(map[types.RunID]*model.ResearchRun),
		citations: citations,
	}
}

func copyRun(r *model.ResearchRun) *model.ResearchRun {
	copied := *r
	return &copied
}

func (r *runRepository) Create(ctx context.Context, run *model.ResearchRun) (*model.ResearchRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return nil, goerr.New("run already exists", goerr.V("runID", run.ID))
	}

	created := copyRun(run)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.UpdatedAt = created.CreatedAt

	r.runs[created.ID] = created
	return copyRun(created), nil
}

func (r *runRepository) Get(ctx context.Context, userID types.UserID, runID types.RunID) (*model.ResearchRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[runID]
	if !exists || run.UserID != userID {
		return nil, nil
	}
	return copyRun(run), nil
}

func (r *runRepository) List(ctx context.Context, userID types.UserID) ([]*model.ResearchRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.ResearchRun
	for _, run := range r.runs {
		if run.UserID == userID {
			result = append(result, copyRun(run))
		}
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *runRepository) MarkInProgress(ctx context.Context, runID types.RunID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[runID]
	if !exists {
		return goerr.New("run not found", goerr.V("runID", runID))
	}
	if !run.Status.CanTransitionTo(types.RunStatusInProgress) {
		return goerr.New("invalid status transition",
			goerr.V("runID", runID),
			goerr.V("from", run.Status),
			goerr.V("to", types.RunStatusInProgress),
		)
	}

	run.Status = types.RunStatusInProgress
	run.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *runRepository) Complete(ctx context.Context, runID types.RunID, report string, citations []*model.Citation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[runID]
	if !exists {
		return goerr.New("run not found", goerr.V("runID", runID))
	}
	if !run.Status.CanTransitionTo(types.RunStatusCompleted) {
		return goerr.New("invalid status transition",
			goerr.V("runID", runID),
			goerr.V("from", run.Status),
			goerr.V("to", types.RunStatusCompleted),
		)
	}

	// Citations become visible together with the COMPLETED status; both are
	// written under the run lock.
	r.citations.put(runID, citations)

	run.Status = types.RunStatusCompleted
	run.FinalReport = report
	run.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *runRepository) Fail(ctx context.Context, runID types.RunID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[runID]
	if !exists {
		return goerr.New("run not found", goerr.V("runID", runID))
	}
	if run.Status.IsTerminal() {
		return goerr.New("run is already terminal",
			goerr.V("runID", runID),
			goerr.V("status", run.Status),
		)
	}

	run.Status = types.RunStatusFailed
	run.ErrorMessage = message
	run.UpdatedAt = time.Now().UTC()
	return nil
}
