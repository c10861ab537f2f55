package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

func runFollowUpRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const userID = types.UserID("user-1")

	setupRun := func(t *testing.T, repo interfaces.Repository) types.RunID {
		t.Helper()
		created, err := repo.Run().Create(context.Background(), model.NewResearchRun(userID, "base question"))
		gt.NoError(t, err).Required()
		return created.ID
	}

	t.Run("AppendExchange stores question and answer as a pair", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		exchange, err := repo.FollowUp().AppendExchange(ctx, runID,
			model.NewFollowUpMessage(runID, types.MessageRoleUser, "Can you expand on that?"),
			model.NewFollowUpMessage(runID, types.MessageRoleAgent, "Certainly."),
		)
		gt.NoError(t, err).Required()
		gt.Array(t, exchange).Length(2)
		gt.Value(t, exchange[0].Role).Equal(types.MessageRoleUser)
		gt.Value(t, exchange[1].Role).Equal(types.MessageRoleAgent)
	})

	t.Run("List returns exchanges in chronological order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		_, err := repo.FollowUp().AppendExchange(ctx, runID,
			model.NewFollowUpMessage(runID, types.MessageRoleUser, "first question"),
			model.NewFollowUpMessage(runID, types.MessageRoleAgent, "first answer"),
		)
		gt.NoError(t, err).Required()

		_, err = repo.FollowUp().AppendExchange(ctx, runID,
			model.NewFollowUpMessage(runID, types.MessageRoleUser, "second question"),
			model.NewFollowUpMessage(runID, types.MessageRoleAgent, "second answer"),
		)
		gt.NoError(t, err).Required()

		messages, err := repo.FollowUp().List(ctx, runID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(4)
		gt.Value(t, messages[0].Content).Equal("first question")
		gt.Value(t, messages[1].Content).Equal("first answer")
		gt.Value(t, messages[2].Content).Equal("second question")
		gt.Value(t, messages[3].Content).Equal("second answer")
	})

	t.Run("AppendExchange rejects invalid messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		_, err := repo.FollowUp().AppendExchange(ctx, runID,
			model.NewFollowUpMessage(runID, types.MessageRoleUser, ""),
			model.NewFollowUpMessage(runID, types.MessageRoleAgent, "answer"),
		)
		gt.Error(t, err)

		messages, err := repo.FollowUp().List(ctx, runID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(0)
	})

	t.Run("List returns empty for run without messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		messages, err := repo.FollowUp().List(ctx, runID)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(0)
	})
}

func TestFollowUpRepository_Memory(t *testing.T) {
	runFollowUpRepositoryTest(t, newMemoryRepo)
}

func TestFollowUpRepository_Firestore(t *testing.T) {
	runFollowUpRepositoryTest(t, newFirestoreRepo)
}
