// Package websearch enriches tutoring turns with Tavily web results.
// Failures are surfaced, never retried: the caller skips augmentation.
package websearch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.tavily.com"
	searchTimeout  = 15 * time.Second
)

// Result is one simplified search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// ErrSearch wraps any transport or HTTP failure from the search API.
type ErrSearch struct {
	Err error
}

func (e *ErrSearch) Error() string {
	return fmt.Sprintf("web search failed: %v", e.Err)
}

func (e *ErrSearch) Unwrap() error { return e.Err }

// Client calls the Tavily search API.
type Client struct {
	client *resty.Client
	apiKey string
}

// NewClient creates a Tavily client with the given API key. An empty
// key produces an unconfigured client; IsConfigured reports usability.
func NewClient(apiKey string) *Client {
	client := resty.New()
	client.SetBaseURL(defaultBaseURL)
	client.SetTimeout(searchTimeout)

	return &Client{
		client: client,
		apiKey: strings.TrimSpace(apiKey),
	}
}

// NewClientFromEnv creates a client keyed by TAVILY_API_KEY.
func NewClientFromEnv() *Client {
	return NewClient(os.Getenv("TAVILY_API_KEY"))
}

// SetBaseURL overrides the API endpoint (tests).
func (c *Client) SetBaseURL(url string) {
	c.client.SetBaseURL(url)
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs one query and returns up to maxResults simplified hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if !c.IsConfigured() {
		return nil, &ErrSearch{Err: fmt.Errorf("TAVILY_API_KEY is not set")}
	}

	var body searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(searchRequest{
			APIKey:        c.apiKey,
			Query:         query,
			SearchDepth:   "basic",
			IncludeAnswer: false,
			MaxResults:    maxResults,
		}).
		SetResult(&body).
		Post("/search")
	if err != nil {
		return nil, &ErrSearch{Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &ErrSearch{Err: fmt.Errorf("tavily returned %d: %s", resp.StatusCode(), resp.String())}
	}

	return body.Results, nil
}
