package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/utils/safe"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

const defaultMaxResults = 5

// client implements Service over the Brave Search REST API
type client struct {
	apiKey     string
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

// WithMaxResults caps the number of results per query
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

// New creates a new web search service with the provided API key
func New(apiKey string, opts ...Option) (Service, error) {
	if apiKey == "" {
		return nil, goerr.New("web search API key is required")
	}

	c := &client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: defaultMaxResults,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// searchResponse mirrors the subset of the Brave Search response we consume
type searchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (c *client) Search(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		return nil, goerr.New("search query is required")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build web search request", goerr.V("query", query))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "web search request failed", goerr.V("query", query))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("web search returned non-OK status",
			goerr.V("query", query),
			goerr.V("status", resp.StatusCode),
		)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode web search response", goerr.V("query", query))
	}

	results := make([]Result, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}

	return results, nil
}
