package model

import (
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// Citation is a source confirmed as referenced in a run's final report.
// Citations are written once, together with run completion, and are unique
// by URL within a run.
type Citation struct {
	RunID types.RunID
	Title string
	URL   string
	Kind  types.SourceKind
}

// CitationFromSource converts a gathered source into a citation
func CitationFromSource(runID types.RunID, src Source) *Citation {
	return &Citation{
		RunID: runID,
		Title: src.Title,
		URL:   src.URL,
		Kind:  src.NormalizeKind(),
	}
}
