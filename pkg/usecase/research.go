package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
	"github.com/crrankyy/research-agent/pkg/service/archive"
	"github.com/crrankyy/research-agent/pkg/service/arxiv"
	"github.com/crrankyy/research-agent/pkg/service/websearch"
	"github.com/crrankyy/research-agent/pkg/utils/async"
	"github.com/crrankyy/research-agent/pkg/utils/errutil"
	"github.com/crrankyy/research-agent/pkg/utils/logging"
)

// Tuning bounds the pipeline's external calls
type Tuning struct {
	PlannerTimeout   time.Duration
	SearchTimeout    time.Duration
	SynthesisTimeout time.Duration
	FollowUpTimeout  time.Duration
}

// DefaultTuning returns the default external call bounds
func DefaultTuning() Tuning {
	return Tuning{
		PlannerTimeout:   30 * time.Second,
		SearchTimeout:    20 * time.Second,
		SynthesisTimeout: 5 * time.Minute,
		FollowUpTimeout:  60 * time.Second,
	}
}

// ResearchUseCase owns the run lifecycle: it creates runs, schedules their
// pipelines and is the sole writer of run status, final report and error
// message. It holds no cross-run state; every access goes through the
// repository by run ID.
type ResearchUseCase struct {
	repo        interfaces.Repository
	llmClient   gollem.LLMClient
	webSearch   websearch.Service
	arxivSearch arxiv.Service
	archive     archive.Service
	eventLog    *EventLog
	tuning      Tuning
}

// NewResearchUseCase creates a new ResearchUseCase
func NewResearchUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, webSearch websearch.Service, arxivSearch arxiv.Service, archiveSvc archive.Service, tuning Tuning) *ResearchUseCase {
	return &ResearchUseCase{
		repo:        repo,
		llmClient:   llmClient,
		webSearch:   webSearch,
		arxivSearch: arxivSearch,
		archive:     archiveSvc,
		eventLog:    NewEventLog(repo.AgentLog()),
		tuning:      tuning,
	}
}

// Start creates a QUEUED run and schedules its pipeline. It returns before
// pipeline work begins; callers poll Get and Logs for progress.
func (uc *ResearchUseCase) Start(ctx context.Context, userID types.UserID, query string) (*model.ResearchRun, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}
	if query == "" {
		return nil, goerr.Wrap(ErrEmptyQuery, "cannot start run")
	}
	if len(query) > model.MaxQueryLength {
		return nil, goerr.Wrap(ErrQueryTooLong, "cannot start run",
			goerr.V("length", len(query)),
		)
	}

	created, err := uc.repo.Run().Create(ctx, model.NewResearchRun(userID, query))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create run")
	}

	// The dispatched goroutine is the only pipeline execution for this run
	run := *created
	async.Dispatch(ctx, func(ctx context.Context) error {
		uc.runPipeline(ctx, &run)
		return nil
	})

	return created, nil
}

// runPipeline drives plan → search → synthesize and finalizes the run.
// Any stage failure is converted here, and only here, into the FAILED state.
func (uc *ResearchUseCase) runPipeline(ctx context.Context, run *model.ResearchRun) {
	logger := logging.From(ctx)
	logger.Info("starting research pipeline", "run_id", run.ID, "user_id", run.UserID)

	if err := uc.repo.Run().MarkInProgress(ctx, run.ID); err != nil {
		_ = errutil.Handle(ctx, err, "failed to mark run in progress")
		return
	}

	report, citations, err := uc.executeStages(ctx, run)
	if err != nil {
		uc.failRun(ctx, run.ID, err)
		return
	}

	if err := uc.repo.Run().Complete(ctx, run.ID, report, citations); err != nil {
		uc.failRun(ctx, run.ID, goerr.Wrap(err, "failed to finalize run"))
		return
	}

	logger.Info("research pipeline completed",
		"run_id", run.ID,
		"report_size", len(report),
		"citations", len(citations),
	)

	uc.archiveReport(ctx, run, report)
}

// executeStages runs the three pipeline stages and returns the report and
// its citation set. Errors are fatal to the run.
func (uc *ResearchUseCase) executeStages(ctx context.Context, run *model.ResearchRun) (string, []*model.Citation, error) {
	uc.eventLog.AppendBestEffort(ctx, run.ID, &model.StatusPayload{Message: "Analyzing your query..."})

	decision, err := uc.plan(ctx, run.Query)
	if err != nil {
		return "", nil, err
	}

	// The plan entry lands before any adapter is invoked
	if _, err := uc.eventLog.Append(ctx, run.ID, decision.planPayload()); err != nil {
		return "", nil, err
	}

	sources := uc.executeSearch(ctx, run.ID, decision)

	uc.eventLog.AppendBestEffort(ctx, run.ID, &model.StatusPayload{Message: "Synthesizing answer..."})

	return uc.synthesize(ctx, run, sources)
}

// failRun records the failure and transitions the run to FAILED. No partial
// report is ever exposed.
func (uc *ResearchUseCase) failRun(ctx context.Context, runID types.RunID, cause error) {
	_ = errutil.Handle(ctx, cause, "research pipeline failed")

	uc.eventLog.AppendBestEffort(ctx, runID, &model.ErrorPayload{Message: cause.Error()})

	if err := uc.repo.Run().Fail(ctx, runID, cause.Error()); err != nil {
		_ = errutil.Handle(ctx, err, "failed to mark run as failed")
	}
}

// archiveReport stores the completed report in the archive when configured.
// Archive failures never affect the run's terminal state.
func (uc *ResearchUseCase) archiveReport(ctx context.Context, run *model.ResearchRun, report string) {
	if uc.archive == nil {
		return
	}

	archived := *run
	archived.Status = types.RunStatusCompleted
	archived.FinalReport = report

	if err := uc.archive.StoreReport(ctx, &archived); err != nil {
		logging.From(ctx).Error("failed to archive report",
			"run_id", run.ID,
			"error", err.Error(),
		)
	}
}

// Get returns the current persisted snapshot of a run owned by the user
func (uc *ResearchUseCase) Get(ctx context.Context, userID types.UserID, runID types.RunID) (*model.ResearchRun, error) {
	run, err := uc.repo.Run().Get(ctx, userID, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("runID", runID))
	}
	if run == nil {
		return nil, goerr.Wrap(ErrRunNotFound, "no such run for user",
			goerr.V("runID", runID),
		)
	}
	return run, nil
}

// List returns all runs of a user, newest first
func (uc *ResearchUseCase) List(ctx context.Context, userID types.UserID) ([]*model.ResearchRun, error) {
	runs, err := uc.repo.Run().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list runs", goerr.V("userID", userID))
	}
	return runs, nil
}

// Logs returns the run's event log entries in sequence order
func (uc *ResearchUseCase) Logs(ctx context.Context, userID types.UserID, runID types.RunID) ([]*model.AgentLogEntry, error) {
	if _, err := uc.Get(ctx, userID, runID); err != nil {
		return nil, err
	}
	return uc.eventLog.List(ctx, runID)
}

// Citations returns the citation set of a run
func (uc *ResearchUseCase) Citations(ctx context.Context, userID types.UserID, runID types.RunID) ([]*model.Citation, error) {
	if _, err := uc.Get(ctx, userID, runID); err != nil {
		return nil, err
	}

	citations, err := uc.repo.Citation().List(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list citations", goerr.V("runID", runID))
	}
	return citations, nil
}
