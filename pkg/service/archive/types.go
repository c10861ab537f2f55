package archive

import (
	"context"

	"github.com/crrankyy/research-agent/pkg/domain/model"
)

// Service archives completed research reports to durable object storage.
// Archiving is best-effort: a failure is logged by the caller and never
// affects the run's terminal state.
type Service interface {
	// StoreReport writes the final report of a completed run
	StoreReport(ctx context.Context, run *model.ResearchRun) error
}
