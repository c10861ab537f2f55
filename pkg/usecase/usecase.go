package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/service/archive"
	"github.com/crrankyy/research-agent/pkg/service/arxiv"
	"github.com/crrankyy/research-agent/pkg/service/websearch"
)

type UseCases struct {
	repo        interfaces.Repository
	llmClient   gollem.LLMClient
	webSearch   websearch.Service
	arxivSearch arxiv.Service
	archive     archive.Service
	tuning      Tuning

	Research *ResearchUseCase
	FollowUp *FollowUpUseCase
}

type Option func(*UseCases)

// WithWebSearch sets the web search adapter. Without it, plans routed to
// the web degrade to an empty source set.
func WithWebSearch(svc websearch.Service) Option {
	return func(uc *UseCases) {
		uc.webSearch = svc
	}
}

// WithArxivSearch sets the arXiv search adapter
func WithArxivSearch(svc arxiv.Service) Option {
	return func(uc *UseCases) {
		uc.arxivSearch = svc
	}
}

// WithArchive sets the report archive store
func WithArchive(svc archive.Service) Option {
	return func(uc *UseCases) {
		uc.archive = svc
	}
}

// WithTuning overrides the default pipeline timeouts
func WithTuning(tuning Tuning) Option {
	return func(uc *UseCases) {
		uc.tuning = tuning
	}
}

func New(repo interfaces.Repository, llmClient gollem.LLMClient, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		llmClient: llmClient,
		tuning:    DefaultTuning(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Research = NewResearchUseCase(repo, llmClient, uc.webSearch, uc.arxivSearch, uc.archive, uc.tuning)
	uc.FollowUp = NewFollowUpUseCase(repo, llmClient, uc.tuning)

	return uc
}
