package memory

import (
	"context"
	"sync"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

type citationRepository struct {
	mu        sync.RWMutex
	citations map[types.RunID][]*model.Citation
}

var _ interfaces.CitationRepository = &citationRepository{}

func newCitationRepository() *citationRepository {
	return &citationRepository{
		citations: make(map[types.RunID][]*model.Citation),
	}
}

func copyCitation(c *model.Citation) *model.Citation {
	copied := *c
	return &copied
}

// put stores the citation set of a run. Called by runRepository.Complete.
func (r *citationRepository) put(runID types.RunID, citations []*model.Citation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]*model.Citation, 0, len(citations))
	for _, c := range citations {
		copied := copyCitation(c)
		copied.RunID = runID
		stored = append(stored, copied)
	}
	r.citations[runID] = stored
}

func (r *citationRepository) List(ctx context.Context, runID types.RunID) ([]*model.Citation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	citations := r.citations[runID]
	result := make([]*model.Citation, 0, len(citations))
	for _, c := range citations {
		result = append(result, copyCitation(c))
	}
	return result, nil
}
