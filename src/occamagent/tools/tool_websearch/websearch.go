// Package tool_websearch implements web search against the DuckDuckGo HTML
// endpoint, scraped with goquery.
package tool_websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/alexboden/occam-claw/src/toolbox"
)

const Name = "web_search"

const defaultBaseURL = "https://html.duckduckgo.com"

const defaultMaxResults = 5

// Input are the search parameters.
type Input struct {
	Query      string `json:"query" required:"true" description:"The search query."`
	MaxResults int    `json:"max_results,omitempty" description:"Max results to return. Default 5."`
}

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Output is the list of hits.
type Output struct {
	Results []Result `json:"results"`
}

// Searcher performs searches against a DuckDuckGo-compatible HTML endpoint.
type Searcher struct {
	HTTPClient *http.Client
	BaseURL    string
}

// New builds the web_search tool with default transport settings.
func New() (toolbox.Tool, error) {
	s := &Searcher{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    defaultBaseURL,
	}
	return s.Tool()
}

// Tool wraps the searcher as a registered tool.
func (s *Searcher) Tool() (toolbox.Tool, error) {
	return toolbox.NewTool(Name, "Search the web for information.", s.search)
}

func (s *Searcher) search(ctx context.Context, input Input) (Output, error) {
	if strings.TrimSpace(input.Query) == "" {
		return Output{}, fmt.Errorf("query is required")
	}
	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	endpoint := strings.TrimRight(s.BaseURL, "/") + "/html/?q=" + url.QueryEscape(input.Query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Output{}, err
	}
	// The HTML endpoint refuses requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) occam-claw")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("search request failed: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Output{}, fmt.Errorf("parsing results: %w", err)
	}

	results := []Result{}
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		results = append(results, Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(results) < maxResults
	})

	return Output{Results: results}, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=... redirect links to the
// target URL.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
