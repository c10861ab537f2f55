package websearch

import "context"

// Service is the general web search capability consumed by the search
// executor. Implementations are independently failable; a failing call
// degrades the result set without aborting the run.
type Service interface {
	// Search returns results for the query in the provider's ranking order
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is one raw web search hit before normalization
type Result struct {
	Title   string
	URL     string
	Snippet string
}
