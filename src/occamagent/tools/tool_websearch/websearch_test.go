package tool_websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `
<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&rut=abc">The Go Programming Language</a>
  <div class="result__snippet">Build simple, secure, scalable systems.</div>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/doc/">Documentation</a>
  <div class="result__snippet">Get started with Go.</div>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/blog/">The Go Blog</a>
</div>
</body></html>`

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Searcher{HTTPClient: server.Client(), BaseURL: server.URL}
}

func TestSearchParsesResults(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprintf(w, "%s", resultsPage)
	})

	out, err := s.search(context.Background(), Input{Query: "golang"})
	require.NoError(t, err)
	require.Len(t, out.Results, 3)

	// The redirect wrapper is unwound to the target URL.
	assert.Equal(t, "The Go Programming Language", out.Results[0].Title)
	assert.Equal(t, "https://go.dev/", out.Results[0].URL)
	assert.Equal(t, "Build simple, secure, scalable systems.", out.Results[0].Snippet)

	// Direct links pass through untouched.
	assert.Equal(t, "https://go.dev/doc/", out.Results[1].URL)

	// A missing snippet is fine.
	assert.Empty(t, out.Results[2].Snippet)
}

func TestSearchCapsResults(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "%s", resultsPage)
	})

	out, err := s.search(context.Background(), Input{Query: "golang", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, out.Results, 1)
}

func TestSearchRequiresQuery(t *testing.T) {
	s := &Searcher{}
	_, err := s.search(context.Background(), Input{Query: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestSearchSurfacesHTTPFailure(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := s.search(context.Background(), Input{Query: "golang"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestResolveRedirect(t *testing.T) {
	assert.Equal(t, "https://go.dev/",
		resolveRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&rut=abc"))
	assert.Equal(t, "https://example.com/page",
		resolveRedirect("https://example.com/page"))
}
