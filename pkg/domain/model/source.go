package model

import (
	"strings"

	"github.com/crrankyy/research-agent/pkg/domain/types"
)

// Source is a normalized retrieval result prior to being judged as cited.
// It is transient: produced by the search executor, consumed by the
// synthesis engine, never persisted on its own.
type Source struct {
	Title   string
	URL     string
	Kind    types.SourceKind
	Snippet string
}

// NormalizeKind resolves the effective kind of a source, reclassifying
// direct PDF links regardless of which adapter returned them.
func (s Source) NormalizeKind() types.SourceKind {
	if strings.HasSuffix(strings.ToLower(strings.Split(s.URL, "?")[0]), ".pdf") {
		return types.SourceKindPDF
	}
	return s.Kind
}

// MergeSources merges source lists preserving the first occurrence per URL
func MergeSources(lists ...[]Source) []Source {
	seen := make(map[string]bool)
	var merged []Source
	for _, list := range lists {
		for _, src := range list {
			if src.URL == "" || seen[src.URL] {
				continue
			}
			seen[src.URL] = true
			merged = append(merged, src)
		}
	}
	return merged
}
