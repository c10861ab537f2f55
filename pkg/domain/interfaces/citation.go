package interfaces

import (
	"context"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// CitationRepository defines the read interface for run citations.
// Citations are written only by RunRepository.Complete.
type CitationRepository interface {
	// List retrieves the citations of a run in their stored order
	List(ctx context.Context, runID types.RunID) ([]*model.Citation, error)
}
