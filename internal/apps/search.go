package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"geminios/internal/gemini"
)

// ResultType categorizes universal search hits.
type ResultType string

const (
	ResultFile    ResultType = "FILE"
	ResultContact ResultType = "CONTACT"
	ResultMail    ResultType = "MAIL"
	ResultApp     ResultType = "APP"
)

// SearchResult is one hit in the universal search panel.
type SearchResult struct {
	Type     ResultType `json:"type"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
}

// Search is the universal search panel. Results are invented by the
// model; the query rides in the system slot so the fixed prompt stays
// cache-friendly.
type Search struct {
	llm gemini.Client
}

// NewSearch wires the search panel.
func NewSearch(llm gemini.Client) *Search {
	return &Search{llm: llm}
}

// Query returns invented results for the query. A blank query returns
// nothing; a malformed response returns an error and no results.
func (s *Search) Query(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	res, err := s.llm.GenerateText(ctx, "Generate search results JSON", "User: "+query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var results []SearchResult
	cleaned := strings.TrimSpace(stripJSONFences(res))
	if err := json.Unmarshal([]byte(cleaned), &results); err != nil {
		return nil, fmt.Errorf("bad search results: %w", err)
	}
	return results, nil
}
