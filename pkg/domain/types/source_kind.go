package types

import "fmt"

// SourceKind classifies where a retrieval result came from
type SourceKind string

const (
	SourceKindWeb   SourceKind = "WEB"
	SourceKindArxiv SourceKind = "ARXIV"
	SourceKindPDF   SourceKind = "PDF"
)

// IsValid checks if the source kind is valid
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindWeb, SourceKindArxiv, SourceKindPDF:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source kind
func (k SourceKind) String() string {
	return string(k)
}

// ParseSourceKind parses a string into a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	kind := SourceKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid source kind: %s", s)
	}
	return kind, nil
}
