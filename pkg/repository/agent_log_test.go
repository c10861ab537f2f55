package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/crrankyy/research-agent/pkg/domain/interfaces"
	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

func runAgentLogRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const userID = types.UserID("user-1")

	setupRun := func(t *testing.T, repo interfaces.Repository) types.RunID {
		t.Helper()
		created, err := repo.Run().Create(context.Background(), model.NewResearchRun(userID, "logged question"))
		gt.NoError(t, err).Required()
		return created.ID
	}

	t.Run("Append assigns contiguous sequence numbers from 1", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		first, err := repo.AgentLog().Append(ctx, runID, &model.StatusPayload{Message: "Analyzing your query..."})
		gt.NoError(t, err).Required()
		gt.Number(t, first.Seq).Equal(1)

		second, err := repo.AgentLog().Append(ctx, runID, &model.PlanPayload{
			Route:      types.RouteWeb,
			WebQueries: []string{"golang history"},
		})
		gt.NoError(t, err).Required()
		gt.Number(t, second.Seq).Equal(2)

		third, err := repo.AgentLog().Append(ctx, runID, &model.ChunkPayload{Content: "Go was"})
		gt.NoError(t, err).Required()
		gt.Number(t, third.Seq).Equal(3)
	})

	t.Run("List returns entries in sequence order with typed payloads", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		_, err := repo.AgentLog().Append(ctx, runID, &model.StatusPayload{Message: "step one"})
		gt.NoError(t, err).Required()
		_, err = repo.AgentLog().Append(ctx, runID, &model.ErrorPayload{Message: "web search failed"})
		gt.NoError(t, err).Required()

		entries, err := repo.AgentLog().List(ctx, runID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)

		gt.Value(t, entries[0].Action).Equal(types.LogActionStatus)
		status := gt.Cast[*model.StatusPayload](t, entries[0].Payload)
		gt.Value(t, status.Message).Equal("step one")

		gt.Value(t, entries[1].Action).Equal(types.LogActionError)
		errPayload := gt.Cast[*model.ErrorPayload](t, entries[1].Payload)
		gt.Value(t, errPayload.Message).Equal("web search failed")
	})

	t.Run("sequences are independent per run", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runA := setupRun(t, repo)
		runB := setupRun(t, repo)

		_, err := repo.AgentLog().Append(ctx, runA, &model.StatusPayload{Message: "a1"})
		gt.NoError(t, err).Required()
		_, err = repo.AgentLog().Append(ctx, runA, &model.StatusPayload{Message: "a2"})
		gt.NoError(t, err).Required()

		entry, err := repo.AgentLog().Append(ctx, runB, &model.StatusPayload{Message: "b1"})
		gt.NoError(t, err).Required()
		gt.Number(t, entry.Seq).Equal(1)

		entries, err := repo.AgentLog().List(ctx, runA)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)
	})

	t.Run("List returns empty for run without entries", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		runID := setupRun(t, repo)

		entries, err := repo.AgentLog().List(ctx, runID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})
}

func TestAgentLogRepository_Memory(t *testing.T) {
	runAgentLogRepositoryTest(t, newMemoryRepo)
}

func TestAgentLogRepository_Firestore(t *testing.T) {
	runAgentLogRepositoryTest(t, newFirestoreRepo)
}
