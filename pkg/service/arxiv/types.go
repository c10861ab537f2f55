package arxiv

import (
	"context"
	"time"
)

// Service is the academic paper search capability consumed by the search
// executor, backed by the arXiv query API.
type Service interface {
	// Search returns papers matching the query, most relevant first
	Search(ctx context.Context, query string) ([]Paper, error)
}

// Paper is one arXiv search hit before normalization
type Paper struct {
	Title     string
	URL       string
	Summary   string
	Authors   []string
	Published time.Time
}
