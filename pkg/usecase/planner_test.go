package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/crrankyy/research-agent/pkg/domain/types"
	"github.com/crrankyy/research-agent/pkg/usecase"
)

func TestValidatePlan(t *testing.T) {
	t.Run("web route with queries", func(t *testing.T) {
		decision, err := usecase.ValidatePlan(&usecase.PlannerResponse{
			Route:      "web",
			WebQueries: []string{"golang generics"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, decision.Route).Equal(types.RouteWeb)
		gt.Array(t, decision.WebQueries).Equal([]string{"golang generics"})
		gt.Value(t, decision.ArxivQueries).Nil()
	})

	t.Run("route casing is normalized", func(t *testing.T) {
		decision, err := usecase.ValidatePlan(&usecase.PlannerResponse{
			Route:        "ARXIV",
			ArxivQueries: []string{"diffusion models"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, decision.Route).Equal(types.RouteArxiv)
	})

	t.Run("unknown route is malformed, never defaulted", func(t *testing.T) {
		_, err := usecase.ValidatePlan(&usecase.PlannerResponse{Route: "internet"})
		gt.B(t, errors.Is(err, usecase.ErrMalformedPlan)).True()
	})

	t.Run("web route without queries is malformed", func(t *testing.T) {
		_, err := usecase.ValidatePlan(&usecase.PlannerResponse{Route: "web"})
		gt.B(t, errors.Is(err, usecase.ErrMalformedPlan)).True()
	})

	t.Run("both route needs queries for both sources", func(t *testing.T) {
		_, err := usecase.ValidatePlan(&usecase.PlannerResponse{
			Route:      "both",
			WebQueries: []string{"only web"},
		})
		gt.B(t, errors.Is(err, usecase.ErrMalformedPlan)).True()
	})

	t.Run("queries for unselected sources are dropped", func(t *testing.T) {
		decision, err := usecase.ValidatePlan(&usecase.PlannerResponse{
			Route:        "none",
			WebQueries:   []string{"stray query"},
			ArxivQueries: []string{"another stray"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, decision.Route).Equal(types.RouteNone)
		gt.Value(t, decision.WebQueries).Nil()
		gt.Value(t, decision.ArxivQueries).Nil()
	})

	t.Run("whitespace-only queries do not satisfy the route", func(t *testing.T) {
		_, err := usecase.ValidatePlan(&usecase.PlannerResponse{
			Route:      "web",
			WebQueries: []string{"   ", ""},
		})
		gt.B(t, errors.Is(err, usecase.ErrMalformedPlan)).True()
	})
}

func TestCleanQueries(t *testing.T) {
	t.Run("trims and drops empties", func(t *testing.T) {
		cleaned := usecase.CleanQueries([]string{" a ", "", "b", "  "})
		gt.Array(t, cleaned).Equal([]string{"a", "b"})
	})

	t.Run("caps the query count", func(t *testing.T) {
		cleaned := usecase.CleanQueries([]string{"q1", "q2", "q3", "q4", "q5"})
		gt.Array(t, cleaned).Equal([]string{"q1", "q2", "q3"})
	})

	t.Run("nil input", func(t *testing.T) {
		gt.Value(t, usecase.CleanQueries(nil)).Nil()
	})
}
