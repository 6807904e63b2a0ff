package tool_webfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head>
<style>body { color: red; }</style>
<script>console.log("hi")</script>
</head><body>
<h1>Release Notes</h1>
<p>Everything is <strong>faster</strong> now.</p>
</body></html>`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Fetcher{HTTPClient: server.Client()}, server.URL
}

func TestFetchMarkdownDefault(t *testing.T) {
	f, url := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, samplePage)
	})

	out, err := f.fetch(context.Background(), Input{URL: url})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Contains(t, out.Content, "# Release Notes")
	assert.Contains(t, out.Content, "**faster**")
}

func TestFetchTextStripsMarkup(t *testing.T) {
	f, url := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, samplePage)
	})

	out, err := f.fetch(context.Background(), Input{URL: url, Format: "text"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "Release Notes")
	assert.Contains(t, out.Content, "Everything is faster now.")
	assert.NotContains(t, out.Content, "console.log")
	assert.NotContains(t, out.Content, "color: red")
}

func TestFetchRawHTML(t *testing.T) {
	f, url := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, samplePage)
	})

	out, err := f.fetch(context.Background(), Input{URL: url, Format: "html"})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "<h1>Release Notes</h1>")
}

func TestFetchRejectsBadScheme(t *testing.T) {
	f := &Fetcher{}
	_, err := f.fetch(context.Background(), Input{URL: "ftp://example.com/file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://")
}

func TestFetchRejectsUnknownFormat(t *testing.T) {
	f := &Fetcher{}
	_, err := f.fetch(context.Background(), Input{URL: "https://example.com", Format: "pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format must be one of")
}

func TestFetchReportsNonOKStatus(t *testing.T) {
	f, url := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><body>not found</body></html>")
	})

	// Non-200 responses still return content; the model decides what to do.
	out, err := f.fetch(context.Background(), Input{URL: url, Format: "text"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, out.StatusCode)
	assert.Contains(t, out.Content, "not found")
}
