package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/crrankyy/research-agent/pkg/service/arxiv"
	"github.com/crrankyy/research-agent/pkg/service/websearch"
)

// Search holds CLI flags for the search adapters
type Search struct {
	braveAPIKey     string `masq:"secret"`
	webMaxResults   int
	arxivMaxResults int
}

// Flags returns CLI flags for search configuration
func (s *Search) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "brave-api-key",
			Usage:       "Brave Search API key (web search is disabled when empty)",
			Sources:     cli.EnvVars("RESEARCH_AGENT_BRAVE_API_KEY"),
			Destination: &s.braveAPIKey,
		},
		&cli.IntFlag{
			Name:        "web-max-results",
			Usage:       "Maximum results per web search query",
			Value:       5,
			Sources:     cli.EnvVars("RESEARCH_AGENT_WEB_MAX_RESULTS"),
			Destination: &s.webMaxResults,
		},
		&cli.IntFlag{
			Name:        "arxiv-max-results",
			Usage:       "Maximum results per arXiv search query",
			Value:       3,
			Sources:     cli.EnvVars("RESEARCH_AGENT_ARXIV_MAX_RESULTS"),
			Destination: &s.arxivMaxResults,
		},
	}
}

// LogValue returns log attributes for the search configuration
func (s Search) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("brave_api_key_set", s.braveAPIKey != ""),
		slog.Int("web_max_results", s.webMaxResults),
		slog.Int("arxiv_max_results", s.arxivMaxResults),
	)
}

// ConfigureWeb builds the web search adapter. Returns nil when no API key
// is configured so web-routed plans degrade instead of failing.
func (s *Search) ConfigureWeb() (websearch.Service, error) {
	if s.braveAPIKey == "" {
		return nil, nil
	}

	svc, err := websearch.New(s.braveAPIKey, websearch.WithMaxResults(s.webMaxResults))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create web search client")
	}
	return svc, nil
}

// ConfigureArxiv builds the arXiv search adapter
func (s *Search) ConfigureArxiv() arxiv.Service {
	return arxiv.New(arxiv.WithMaxResults(s.arxivMaxResults))
}
