package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// executeSearch fans out the planner's derived queries to the selected
// adapters and merges the results into a deduplicated source list. Adapter
// failures degrade the result set and are logged, never fatal; route NONE
// returns an empty list without touching any adapter.
func (uc *ResearchUseCase) executeSearch(ctx context.Context, runID types.RunID, decision *planDecision) []model.Source {
	if decision.Route == types.RouteNone {
		return nil
	}

	type task struct {
		kind  types.SourceKind
		query string
	}

	var tasks []task
	for _, q := range decision.WebQueries {
		tasks = append(tasks, task{kind: types.SourceKindWeb, query: q})
	}
	for _, q := range decision.ArxivQueries {
		tasks = append(tasks, task{kind: types.SourceKindArxiv, query: q})
	}

	// Results keep task order so merge-by-first-occurrence is deterministic
	// regardless of which adapter call returns first.
	results := make([][]model.Source, len(tasks))

	var eg errgroup.Group
	for i, tk := range tasks {
		uc.eventLog.AppendBestEffort(ctx, runID, &model.StatusPayload{
			Message: fmt.Sprintf("Searching %s for: %s", tk.kind, tk.query),
		})

		eg.Go(func() error {
			searchCtx, cancel := context.WithTimeout(ctx, uc.tuning.SearchTimeout)
			defer cancel()

			sources, err := uc.searchOne(searchCtx, tk.kind, tk.query)
			if err != nil {
				uc.eventLog.AppendBestEffort(ctx, runID, &model.ErrorPayload{
					Message: fmt.Sprintf("%s search failed for %q: %s", tk.kind, tk.query, err),
				})
				return nil
			}
			results[i] = sources
			return nil
		})
	}
	_ = eg.Wait() // goroutines report through the event log, never an error

	merged := model.MergeSources(results...)
	if len(merged) == 0 {
		uc.eventLog.AppendBestEffort(ctx, runID, &model.StatusPayload{
			Message: "No sources found; answering from general knowledge without citations",
		})
	}

	return merged
}

// searchOne invokes a single adapter and normalizes its results
func (uc *ResearchUseCase) searchOne(ctx context.Context, kind types.SourceKind, query string) ([]model.Source, error) {
	switch kind {
	case types.SourceKindWeb:
		if uc.webSearch == nil {
			return nil, goerr.New("web search adapter is not configured")
		}
		hits, err := uc.webSearch.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		sources := make([]model.Source, 0, len(hits))
		for _, h := range hits {
			sources = append(sources, model.Source{
				Title:   h.Title,
				URL:     h.URL,
				Kind:    types.SourceKindWeb,
				Snippet: h.Snippet,
			})
		}
		return sources, nil

	case types.SourceKindArxiv:
		if uc.arxivSearch == nil {
			return nil, goerr.New("arXiv adapter is not configured")
		}
		papers, err := uc.arxivSearch.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		sources := make([]model.Source, 0, len(papers))
		for _, p := range papers {
			sources = append(sources, model.Source{
				Title:   p.Title,
				URL:     p.URL,
				Kind:    types.SourceKindArxiv,
				Snippet: p.Summary,
			})
		}
		return sources, nil

	default:
		return nil, goerr.New("unknown source kind", goerr.V("kind", kind))
	}
}
