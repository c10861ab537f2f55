package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

func TestFollowUpMessage_Validate(t *testing.T) {
	runID := types.NewRunID()

	t.Run("valid message", func(t *testing.T) {
		msg := model.NewFollowUpMessage(runID, types.MessageRoleUser, "a question")
		gt.NoError(t, msg.Validate())
		gt.Value(t, msg.ID.String()).NotEqual("")
		gt.B(t, msg.CreatedAt.IsZero()).False()
	})

	t.Run("missing content", func(t *testing.T) {
		msg := model.NewFollowUpMessage(runID, types.MessageRoleAgent, "")
		gt.Error(t, msg.Validate())
	})

	t.Run("invalid role", func(t *testing.T) {
		msg := model.NewFollowUpMessage(runID, types.MessageRole("system"), "content")
		gt.Error(t, msg.Validate())
	})

	t.Run("missing run ID", func(t *testing.T) {
		msg := model.NewFollowUpMessage("", types.MessageRoleUser, "content")
		gt.Error(t, msg.Validate())
	})
}
