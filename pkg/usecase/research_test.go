package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
	"github.com/crrankyy/research-agent/pkg/repository/memory"
	"github.com/crrankyy/research-agent/pkg/service/arxiv"
	"github.com/crrankyy/research-agent/pkg/service/websearch"
	"github.com/crrankyy/research-agent/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
	generateStreamFn  func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"mock response"},
	}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	if s.generateStreamFn != nil {
		return s.generateStreamFn(ctx, input...)
	}
	return streamOf("mock streamed response"), nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

// streamOf builds a closed response channel delivering the given fragments
func streamOf(texts ...string) <-chan *gollem.Response {
	ch := make(chan *gollem.Response, len(texts))
	for _, text := range texts {
		ch <- &gollem.Response{Texts: []string{text}}
	}
	close(ch)
	return ch
}

// plannerJSON renders a planner response as the model would return it
func plannerJSON(route string, webQueries, arxivQueries []string) string {
	quote := func(qs []string) string {
		out := ""
		for i, q := range qs {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf("%q", q)
		}
		return out
	}
	return fmt.Sprintf(`{"route":%q,"web_queries":[%s],"arxiv_queries":[%s]}`,
		route, quote(webQueries), quote(arxivQueries))
}

// pipelineLLM returns a client whose first session is the planner and whose
// second is the synthesis stream
func pipelineLLM(planText string, stream func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error)) *mockLLMClient {
	calls := 0
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			calls++
			if calls == 1 {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{planText}}, nil
					},
				}, nil
			}
			return &mockLLMSession{generateStreamFn: stream}, nil
		},
	}
}

// mockWebSearch implements websearch.Service
type mockWebSearch struct {
	searchFn func(ctx context.Context, query string) ([]websearch.Result, error)
}

func (m *mockWebSearch) Search(ctx context.Context, query string) ([]websearch.Result, error) {
	return m.searchFn(ctx, query)
}

// mockArxivSearch implements arxiv.Service
type mockArxivSearch struct {
	searchFn func(ctx context.Context, query string) ([]arxiv.Paper, error)
}

func (m *mockArxivSearch) Search(ctx context.Context, query string) ([]arxiv.Paper, error) {
	return m.searchFn(ctx, query)
}

// waitForTerminal polls until the run reaches a terminal state
func waitForTerminal(t *testing.T, repo interfaces.Repository, userID types.UserID, runID types.RunID) *model.ResearchRun {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		run, err := repo.Run().Get(context.Background(), userID, runID)
		gt.NoError(t, err).Required()
		gt.Value(t, run).NotNil()
		if run.Status.IsTerminal() {
			return run
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run did not reach a terminal state in time")
	return nil
}

func TestResearchUseCase_Start_Validation(t *testing.T) {
	repo := memory.New()
	ucs := usecase.New(repo, &mockLLMClient{})
	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		_, err := ucs.Research.Start(ctx, "user-1", "")
		gt.B(t, errors.Is(err, usecase.ErrEmptyQuery)).True()
	})

	t.Run("query over the limit", func(t *testing.T) {
		long := make([]byte, model.MaxQueryLength+1)
		for i := range long {
			long[i] = 'q'
		}
		_, err := ucs.Research.Start(ctx, "user-1", string(long))
		gt.B(t, errors.Is(err, usecase.ErrQueryTooLong)).True()
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := ucs.Research.Start(ctx, "", "valid question")
		gt.Error(t, err)
	})
}

func TestResearchUseCase_FullPipeline(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	report := "Transformers rely on attention. See [Attention Is All You Need](https://arxiv.org/abs/1706.03762) " +
		"and [Transformer overview](https://example.com/overview) for details."
	chunks := []string{
		"Transformers rely on attention. ",
		"See [Attention Is All You Need](https://arxiv.org/abs/1706.03762) ",
		"and [Transformer overview](https://example.com/overview) for details.",
	}

	llm := pipelineLLM(
		plannerJSON("both", []string{"transformer architecture"}, []string{"attention mechanism"}),
		func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
			return streamOf(chunks...), nil
		},
	)

	web := &mockWebSearch{searchFn: func(ctx context.Context, query string) ([]websearch.Result, error) {
		return []websearch.Result{
			{Title: "Transformer overview", URL: "https://example.com/overview", Snippet: "intro"},
			{Title: "Unused article", URL: "https://example.com/unused", Snippet: "filler"},
		}, nil
	}}
	arx := &mockArxivSearch{searchFn: func(ctx context.Context, query string) ([]arxiv.Paper, error) {
		return []arxiv.Paper{
			{Title: "Attention Is All You Need", URL: "https://arxiv.org/abs/1706.03762", Summary: "the paper"},
		}, nil
	}}

	ucs := usecase.New(repo, llm,
		usecase.WithWebSearch(web),
		usecase.WithArxivSearch(arx),
	)

	started, err := ucs.Research.Start(ctx, "user-1", "How do transformers work?")
	gt.NoError(t, err).Required()
	gt.Value(t, started.Status).Equal(types.RunStatusQueued)

	run := waitForTerminal(t, repo, "user-1", started.ID)
	gt.Value(t, run.Status).Equal(types.RunStatusCompleted)
	gt.Value(t, run.FinalReport).Equal(report)
	gt.Value(t, run.ErrorMessage).Equal("")

	// Citation set is exactly the referenced sources, not all gathered ones
	citations, err := ucs.Research.Citations(ctx, "user-1", run.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, citations).Length(2)
	gt.Value(t, citations[0].URL).Equal("https://example.com/overview")
	gt.Value(t, citations[1].URL).Equal("https://arxiv.org/abs/1706.03762")

	entries, err := ucs.Research.Logs(ctx, "user-1", run.ID)
	gt.NoError(t, err).Required()

	// Contiguous sequence from 1
	for i, entry := range entries {
		gt.Number(t, entry.Seq).Equal(int64(i + 1))
	}

	// status, plan, 2 search statuses, synthesis status, 3 chunks
	gt.Array(t, entries).Length(8)
	gt.Value(t, entries[0].Action).Equal(types.LogActionStatus)
	gt.Value(t, entries[1].Action).Equal(types.LogActionPlan)

	plan := gt.Cast[*model.PlanPayload](t, entries[1].Payload)
	gt.Value(t, plan.Route).Equal(types.RouteBoth)
	gt.Array(t, plan.WebQueries).Equal([]string{"transformer architecture"})
	gt.Array(t, plan.ArxivQueries).Equal([]string{"attention mechanism"})

	var got string
	for _, entry := range entries {
		if chunk, ok := entry.Payload.(*model.ChunkPayload); ok {
			got += chunk.Content
		}
	}
	gt.Value(t, got).Equal(report)
}

func TestResearchUseCase_RouteNone(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	llm := pipelineLLM(
		plannerJSON("none", nil, nil),
		func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
			return streamOf("Two plus two equals four."), nil
		},
	)

	// No adapters configured: route NONE must not need them
	ucs := usecase.New(repo, llm)

	started, err := ucs.Research.Start(ctx, "user-1", "What is 2+2?")
	gt.NoError(t, err).Required()

	run := waitForTerminal(t, repo, "user-1", started.ID)
	gt.Value(t, run.Status).Equal(types.RunStatusCompleted)
	gt.Value(t, run.FinalReport).Equal("Two plus two equals four.")

	citations, err := ucs.Research.Citations(ctx, "user-1", run.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, citations).Length(0)
}

func TestResearchUseCase_PlannerFailure(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, goerr.New("model unavailable")
				},
			}, nil
		},
	}

	ucs := usecase.New(repo, llm)

	started, err := ucs.Research.Start(ctx, "user-1", "doomed question")
	gt.NoError(t, err).Required()

	run := waitForTerminal(t, repo, "user-1", started.ID)
	gt.Value(t, run.Status).Equal(types.RunStatusFailed)
	gt.Value(t, run.FinalReport).Equal("")
	gt.Value(t, run.ErrorMessage).NotEqual("")

	// No plan entry, but the failure itself is logged
	entries, err := ucs.Research.Logs(ctx, "user-1", run.ID)
	gt.NoError(t, err).Required()

	var lastAction types.LogAction
	for _, entry := range entries {
		gt.Value(t, entry.Action).NotEqual(types.LogActionPlan)
		lastAction = entry.Action
	}
	gt.Value(t, lastAction).Equal(types.LogActionError)
}

func TestResearchUseCase_MalformedPlanFailsRun(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	llm := pipelineLLM(`{"route":"everywhere"}`, nil)

	ucs := usecase.New(repo, llm)

	started, err := ucs.Research.Start(ctx, "user-1", "confusing question")
	gt.NoError(t, err).Required()

	run := waitForTerminal(t, repo, "user-1", started.ID)
	gt.Value(t, run.Status).Equal(types.RunStatusFailed)
}

func TestResearchUseCase_AdapterFailureDegrades(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	report := "Study [BERT](https://arxiv.org/abs/1810.04805) for pretraining."
	llm := pipelineLLM(
		plannerJSON("both", []string{"bert pretraining"}, []string{"bert"}),
		func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
			return streamOf(report), nil
		},
	)

	web := &mockWebSearch{searchFn: func(ctx context.Context, query string) ([]websearch.Result, error) {
		return nil, goerr.New("rate limited")
	}}
	arx := &mockArxivSearch{searchFn: func(ctx context.Context, query string) ([]arxiv.Paper, error) {
		return []arxiv.Paper{
			{Title: "BERT", URL: "https://arxiv.org/abs/1810.04805", Summary: "pretraining"},
		}, nil
	}}

	ucs := usecase.New(repo, llm,
		usecase.WithWebSearch(web),
		usecase.WithArxivSearch(arx),
	)

	started, err := ucs.Research.Start(ctx, "user-1", "What is BERT?")
	gt.NoError(t, err).Required()

	run := waitForTerminal(t, repo, "user-1", started.ID)
	gt.Value(t, run.Status).Equal(types.RunStatusCompleted)

	citations, err := ucs.Research.Citations(ctx, "user-1", run.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, citations).Length(1)
	gt.Value(t, citations[0].URL).Equal("https://arxiv.org/abs/1810.04805")

	// The adapter failure is visible in the log, not in the run state
	entries, err := ucs.Research.Logs(ctx, "user-1", run.ID)
	gt.NoError(t, err).Required()

	var errorLogged bool
	for _, entry := range entries {
		if entry.Action == types.LogActionError {
			errorLogged = true
		}
	}
	gt.B(t, errorLogged).True()
}

func TestResearchUseCase_EmptyStreamFailsRun(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	llm := pipelineLLM(
		plannerJSON("none", nil, nil),
		func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
			return streamOf(), nil
		},
	)

	ucs := usecase.New(repo, llm)

	started, err := ucs.Research.Start(ctx, "user-1", "silent question")
	gt.NoError(t, err).Required()

	run := waitForTerminal(t, repo, "user-1", started.ID)
	gt.Value(t, run.Status).Equal(types.RunStatusFailed)
}

func TestResearchUseCase_Accessors(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	ucs := usecase.New(repo, &mockLLMClient{})

	t.Run("Get maps missing run to ErrRunNotFound", func(t *testing.T) {
		_, err := ucs.Research.Get(ctx, "user-1", types.NewRunID())
		gt.B(t, errors.Is(err, usecase.ErrRunNotFound)).True()
	})

	t.Run("Get hides other users' runs", func(t *testing.T) {
		created, err := repo.Run().Create(ctx, model.NewResearchRun("owner", "private"))
		gt.NoError(t, err).Required()

		_, err = ucs.Research.Get(ctx, "intruder", created.ID)
		gt.B(t, errors.Is(err, usecase.ErrRunNotFound)).True()
	})

	t.Run("Logs requires run ownership", func(t *testing.T) {
		created, err := repo.Run().Create(ctx, model.NewResearchRun("owner", "private"))
		gt.NoError(t, err).Required()

		_, err = ucs.Research.Logs(ctx, "intruder", created.ID)
		gt.B(t, errors.Is(err, usecase.ErrRunNotFound)).True()
	})
}
