package arxiv

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/utils/safe"
)

const defaultBaseURL = "https://export.arxiv.org/api/query"

const defaultMaxResults = 3

// client implements Service over the arXiv Atom query API
type client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the API endpoint, mainly for tests
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithMaxResults caps the number of papers per query
func WithMaxResults(n int) Option {
	return func(c *client) {
		c.maxResults = n
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a new arXiv search service. The arXiv API needs no credentials.
func New(opts ...Option) Service {
	c := &client{
		baseURL:    defaultBaseURL,
		maxResults: defaultMaxResults,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// atomFeed mirrors the subset of the arXiv Atom response we consume
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

func (c *client) Search(ctx context.Context, query string) ([]Paper, error) {
	if query == "" {
		return nil, goerr.New("search query is required")
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", strconv.Itoa(c.maxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build arXiv request", goerr.V("query", query))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "arXiv request failed", goerr.V("query", query))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("arXiv returned non-OK status",
			goerr.V("query", query),
			goerr.V("status", resp.StatusCode),
		)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode arXiv response", goerr.V("query", query))
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e.ID == "" {
			continue
		}

		authors := make([]string, 0, len(e.Authors))
		for _, a := range e.Authors {
			authors = append(authors, a.Name)
		}

		// Published is RFC3339; a parse failure leaves the zero time rather
		// than dropping the paper.
		published, _ := time.Parse(time.RFC3339, e.Published)

		papers = append(papers, Paper{
			Title:     normalizeWhitespace(e.Title),
			URL:       e.ID,
			Summary:   normalizeWhitespace(e.Summary),
			Authors:   authors,
			Published: published,
		})
	}

	return papers, nil
}

// normalizeWhitespace collapses the newline-wrapped text arXiv returns
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
