// Package websearch implements a simulated web search backend.
//
// The backend stands in for a real search API during development and
// evaluation runs: results are synthesized deterministically from the query
// text so that harness scoring is reproducible. Swapping in a live search
// service only requires another implementation of the [tool.Tool] contract.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/inquiro/internal/tool"
)

// Name is the identifier this tool registers under.
const Name = "web_search"

// SearchResult is a single simulated search hit.
type SearchResult struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	URL            string  `json:"url"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Response is the payload structure the tool emits as JSON.
type Response struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// Search is a simulated web search tool. It implements [tool.Tool].
type Search struct {
	delay time.Duration
}

// Option is a functional option for [Search].
type Option func(*Search)

// WithDelay makes every invocation block for d before responding, emulating
// network latency. Default: no delay.
func WithDelay(d time.Duration) Option {
	return func(s *Search) {
		s.delay = d
	}
}

// New creates a simulated web search tool.
func New(opts ...Option) *Search {
	s := &Search{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name implements tool.Tool.
func (s *Search) Name() string { return Name }

// Description implements tool.Tool.
func (s *Search) Description() string {
	return "Search the web for current information and research data"
}

// Invoke implements tool.Tool. The result set is derived deterministically
// from the query so repeated evaluation runs score identically.
func (s *Search) Invoke(ctx context.Context, query string) (string, []string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(query)), " ", "-")
	result := SearchResult{
		Title:          fmt.Sprintf("Research result for: %s", query),
		Content:        fmt.Sprintf("Simulated research content about %s, covering recent findings and background.", query),
		URL:            fmt.Sprintf("https://example.com/research/%s", slug),
		RelevanceScore: 0.85,
	}

	payload, err := json.Marshal(Response{
		Results:      []SearchResult{result},
		TotalResults: 1,
	})
	if err != nil {
		return "", nil, fmt.Errorf("websearch: marshal results: %w", err)
	}

	return string(payload), []string{result.URL}, nil
}

// Ensure Search implements tool.Tool at compile time.
var _ tool.Tool = (*Search)(nil)
