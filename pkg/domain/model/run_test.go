package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

func TestNewResearchRun(t *testing.T) {
	run := model.NewResearchRun("user-1", "What is a neural network?")

	gt.Value(t, run.ID.String()).NotEqual("")
	gt.Value(t, run.UserID).Equal(types.UserID("user-1"))
	gt.Value(t, run.Status).Equal(types.RunStatusQueued)
	gt.B(t, run.CreatedAt.IsZero()).False()
	gt.B(t, run.UpdatedAt.Equal(run.CreatedAt)).True()
	gt.NoError(t, run.Validate())
}

func TestResearchRun_Validate(t *testing.T) {
	valid := func() *model.ResearchRun {
		return model.NewResearchRun("user-1", "valid question")
	}

	t.Run("missing query", func(t *testing.T) {
		run := valid()
		run.Query = ""
		gt.Error(t, run.Validate())
	})

	t.Run("query too long", func(t *testing.T) {
		run := valid()
		run.Query = strings.Repeat("a", model.MaxQueryLength+1)
		gt.Error(t, run.Validate())
	})

	t.Run("query at limit", func(t *testing.T) {
		run := valid()
		run.Query = strings.Repeat("a", model.MaxQueryLength)
		gt.NoError(t, run.Validate())
	})

	t.Run("report requires completed status", func(t *testing.T) {
		run := valid()
		run.FinalReport = "early report"
		gt.Error(t, run.Validate())
	})

	t.Run("completed status requires report", func(t *testing.T) {
		run := valid()
		run.Status = types.RunStatusCompleted
		gt.Error(t, run.Validate())

		run.FinalReport = "the report"
		gt.NoError(t, run.Validate())
	})

	t.Run("error message requires failed status", func(t *testing.T) {
		run := valid()
		run.ErrorMessage = "it broke"
		gt.Error(t, run.Validate())

		run.Status = types.RunStatusFailed
		gt.NoError(t, run.Validate())
	})
}
