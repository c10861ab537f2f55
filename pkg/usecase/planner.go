package usecase

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
)

//go:embed prompt/planner_system.md
var plannerSystemPrompt string

const maxQueriesPerSource = 3

// planDecision is the planner's routing decision: which adapters to invoke
// and the derived queries for each.
type planDecision struct {
	Route        types.Route
	WebQueries   []string
	ArxivQueries []string
}

// plannerResponse is the JSON structure the model is constrained to return
type plannerResponse struct {
	Route        string   `json:"route"`
	WebQueries   []string `json:"web_queries"`
	ArxivQueries []string `json:"arxiv_queries"`
}

func plannerResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ResearchPlan",
		Description: "Routing decision for a research question",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"route": {
				Type:        gollem.TypeString,
				Description: "Which search sources to consult",
				Enum:        []string{"none", "web", "arxiv", "both"},
				Required:    true,
			},
			"web_queries": {
				Type:        gollem.TypeArray,
				Description: "1-3 derived queries for web search. Empty unless route is web or both.",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"arxiv_queries": {
				Type:        gollem.TypeArray,
				Description: "1-3 derived queries for arXiv. Empty unless route is arxiv or both.",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
		},
	}
}

// plan asks the model for a constrained routing decision. A response that
// cannot be parsed into the fixed enum fails the run; an unreviewed search
// from an ambiguous plan is worse than no search.
func (uc *ResearchUseCase) plan(ctx context.Context, query string) (*planDecision, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.tuning.PlannerTimeout)
	defer cancel()

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(plannerResponseSchema()),
		gollem.WithSessionSystemPrompt(plannerSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create planner session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(query))
	if err != nil {
		return nil, goerr.Wrap(err, "planner call failed")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.Wrap(ErrMalformedPlan, "planner returned no content")
	}

	var decoded plannerResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &decoded); err != nil {
		return nil, goerr.Wrap(ErrMalformedPlan, "planner response is not valid JSON",
			goerr.V("response", resp.Texts[0]),
		)
	}

	return validatePlan(&decoded)
}

// validatePlan checks the decoded decision against the route contract
func validatePlan(decoded *plannerResponse) (*planDecision, error) {
	route, err := types.ParseRoute(decoded.Route)
	if err != nil {
		return nil, goerr.Wrap(ErrMalformedPlan, "planner chose an unknown route",
			goerr.V("route", decoded.Route),
		)
	}

	decision := &planDecision{
		Route:        route,
		WebQueries:   cleanQueries(decoded.WebQueries),
		ArxivQueries: cleanQueries(decoded.ArxivQueries),
	}

	if route.NeedsWeb() && len(decision.WebQueries) == 0 {
		return nil, goerr.Wrap(ErrMalformedPlan, "route requires web queries but none were derived",
			goerr.V("route", route),
		)
	}
	if route.NeedsArxiv() && len(decision.ArxivQueries) == 0 {
		return nil, goerr.Wrap(ErrMalformedPlan, "route requires arXiv queries but none were derived",
			goerr.V("route", route),
		)
	}

	// Queries for unselected sources are ignored, not an error
	if !route.NeedsWeb() {
		decision.WebQueries = nil
	}
	if !route.NeedsArxiv() {
		decision.ArxivQueries = nil
	}

	return decision, nil
}

// cleanQueries trims, drops empties and caps the per-source query count
func cleanQueries(queries []string) []string {
	var cleaned []string
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		cleaned = append(cleaned, q)
		if len(cleaned) == maxQueriesPerSource {
			break
		}
	}
	return cleaned
}

// planPayload converts a decision into its event log representation
func (d *planDecision) planPayload() *model.PlanPayload {
	return &model.PlanPayload{
		Route:        d.Route,
		WebQueries:   d.WebQueries,
		ArxivQueries: d.ArxivQueries,
	}
}
