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

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

//go:embed prompt/followup_system.md
var followUpSystemPromptTmpl string

var followUpSystemTemplate = template.Must(template.New("followup_system").Parse(followUpSystemPromptTmpl))

// FollowUpUseCase answers questions about a completed run's report. It
// depends only on the run snapshot and the follow-up transcript; it never
// touches the event log, planner or search adapters.
type FollowUpUseCase struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	tuning    Tuning
}

// NewFollowUpUseCase creates a new FollowUpUseCase
func NewFollowUpUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, tuning Tuning) *FollowUpUseCase {
	return &FollowUpUseCase{
		repo:      repo,
		llmClient: llmClient,
		tuning:    tuning,
	}
}

// Ask answers a follow-up question about a completed run and persists the
// question/answer pair. Only COMPLETED runs accept follow-ups; the run's
// status, report and event log are never modified.
func (uc *FollowUpUseCase) Ask(ctx context.Context, userID types.UserID, runID types.RunID, message string) ([]*model.FollowUpMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, goerr.Wrap(ErrEmptyMessage, "cannot ask follow-up")
	}

	run, err := uc.repo.Run().Get(ctx, userID, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("runID", runID))
	}
	if run == nil {
		return nil, goerr.Wrap(ErrRunNotFound, "no such run for user",
			goerr.V("runID", runID),
		)
	}
	if run.Status != types.RunStatusCompleted {
		return nil, goerr.Wrap(ErrRunNotCompleted, "follow-up requires a completed run",
			goerr.V("runID", runID),
			goerr.V("status", run.Status),
		)
	}

	history, err := uc.repo.FollowUp().List(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list follow-up history", goerr.V("runID", runID))
	}

	answer, err := uc.generateAnswer(ctx, run, history, message)
	if err != nil {
		return nil, err
	}

	exchange, err := uc.repo.FollowUp().AppendExchange(ctx, runID,
		model.NewFollowUpMessage(runID, types.MessageRoleUser, message),
		model.NewFollowUpMessage(runID, types.MessageRoleAgent, answer),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist follow-up exchange", goerr.V("runID", runID))
	}

	return exchange, nil
}

func (uc *FollowUpUseCase) generateAnswer(ctx context.Context, run *model.ResearchRun, history []*model.FollowUpMessage, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.tuning.FollowUpTimeout)
	defer cancel()

	var systemPrompt bytes.Buffer
	if err := followUpSystemTemplate.Execute(&systemPrompt, map[string]any{
		"Report": run.FinalReport,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render follow-up system prompt")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt.String()),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create follow-up session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildFollowUpPrompt(history, message)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate follow-up answer",
			goerr.V("runID", run.ID),
		)
	}

	answer := strings.TrimSpace(strings.Join(resp.Texts, ""))
	if answer == "" {
		return "", goerr.New("follow-up answer was empty", goerr.V("runID", run.ID))
	}

	return answer, nil
}

// buildFollowUpPrompt renders the prior transcript followed by the new
// question so the model sees the full conversation
func buildFollowUpPrompt(history []*model.FollowUpMessage, message string) string {
	var sb strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case types.MessageRoleUser:
			fmt.Fprintf(&sb, "User: %s\n", msg.Content)
		case types.MessageRoleAgent:
			fmt.Fprintf(&sb, "Assistant: %s\n", msg.Content)
		}
	}
	fmt.Fprintf(&sb, "User: %s", message)
	return sb.String()
}

// History returns the run's follow-up transcript in chronological order
func (uc *FollowUpUseCase) History(ctx context.Context, userID types.UserID, runID types.RunID) ([]*model.FollowUpMessage, error) {
	run, err := uc.repo.Run().Get(ctx, userID, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("runID", runID))
	}
	if run == nil {
		return nil, goerr.Wrap(ErrRunNotFound, "no such run for user",
			goerr.V("runID", runID),
		)
	}

	history, err := uc.repo.FollowUp().List(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list follow-up history", goerr.V("runID", runID))
	}
	return history, nil
}
