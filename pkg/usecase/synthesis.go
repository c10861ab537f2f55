package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

//go:embed prompt/synthesis_system.md
var synthesisSystemPromptTmpl string

var synthesisSystemPrompt = template.Must(template.New("synthesis_system").Parse(synthesisSystemPromptTmpl))

// synthesisPromptSource is one source entry for the system prompt template
type synthesisPromptSource struct {
	Title   string
	URL     string
	Kind    string
	Snippet string
}

type synthesisPromptData struct {
	Sources []synthesisPromptSource
}

// synthesize streams the report from the model, persisting each fragment as
// a response_chunk entry in arrival order, and derives the citation set from
// the accumulated text.
func (uc *ResearchUseCase) synthesize(ctx context.Context, run *model.ResearchRun, sources []model.Source) (string, []*model.Citation, error) {
	systemPrompt, err := buildSynthesisSystemPrompt(sources)
	if err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.tuning.SynthesisTimeout)
	defer cancel()

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to create synthesis session")
	}

	userPrompt := fmt.Sprintf("User question: %s\n\nPlease provide your educational response now.", run.Query)

	stream, err := session.GenerateStream(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", nil, goerr.Wrap(err, "synthesis stream failed to start")
	}

	// Fragments are persisted one by one as they arrive; the sequence
	// numbers of the chunk entries equal arrival order.
	var report strings.Builder
	for resp := range stream {
		if resp == nil {
			continue
		}
		for _, text := range resp.Texts {
			if text == "" {
				continue
			}
			if _, err := uc.eventLog.Append(ctx, run.ID, &model.ChunkPayload{Content: text}); err != nil {
				return "", nil, err
			}
			report.WriteString(text)
		}
	}

	if report.Len() == 0 {
		return "", nil, goerr.Wrap(ErrEmptyReport, "model stream produced no text")
	}

	final := report.String()
	return final, extractCitations(run.ID, final, sources), nil
}

func buildSynthesisSystemPrompt(sources []model.Source) (string, error) {
	data := synthesisPromptData{}
	for _, src := range sources {
		data.Sources = append(data.Sources, synthesisPromptSource{
			Title:   src.Title,
			URL:     src.URL,
			Kind:    src.NormalizeKind().String(),
			Snippet: src.Snippet,
		})
	}

	var buf bytes.Buffer
	if err := synthesisSystemPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute synthesis system prompt template")
	}
	return buf.String(), nil
}

// extractCitations keeps exactly the gathered sources the report actually
// references, by URL or exact title, deduplicated by URL. Sources retrieved
// but unused are discarded so the citation list never inflates.
func extractCitations(runID types.RunID, report string, sources []model.Source) []*model.Citation {
	seen := make(map[string]bool)
	var citations []*model.Citation

	for _, src := range sources {
		if src.URL == "" || seen[src.URL] {
			continue
		}

		cited := strings.Contains(report, src.URL)
		if !cited && src.Title != "" {
			cited = strings.Contains(report, src.Title)
		}
		if !cited {
			continue
		}

		seen[src.URL] = true
		citations = append(citations, model.CitationFromSource(runID, src))
	}

	return citations
}
