// Package tool_webfetch fetches a URL and returns its content as text,
// markdown, or raw HTML.
package tool_webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/alexboden/occam-claw/src/toolbox"
)

const Name = "web_fetch"

const maxResponseSize = 5 << 20 // 5MB

// Input are the fetch parameters.
type Input struct {
	URL    string `json:"url" required:"true" description:"The URL to fetch content from."`
	Format string `json:"format,omitempty" description:"Output format: text, markdown, or html. Default markdown."`
}

// Output is the fetched content.
type Output struct {
	Content     string `json:"content"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
}

// Fetcher performs the HTTP fetch; swappable transport for tests.
type Fetcher struct {
	HTTPClient *http.Client
}

// New builds the web_fetch tool with default transport settings.
func New() (toolbox.Tool, error) {
	f := &Fetcher{HTTPClient: &http.Client{Timeout: 30 * time.Second}}
	return f.Tool()
}

// Tool wraps the fetcher as a registered tool.
func (f *Fetcher) Tool() (toolbox.Tool, error) {
	return toolbox.NewTool(Name, "Fetch the content of a web page as text, markdown, or raw HTML.", f.fetch)
}

func (f *Fetcher) fetch(ctx context.Context, input Input) (Output, error) {
	if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
		return Output{}, fmt.Errorf("url must start with http:// or https://")
	}
	format := strings.ToLower(input.Format)
	if format == "" {
		format = "markdown"
	}
	if format != "text" && format != "markdown" && format != "html" {
		return Output{}, fmt.Errorf("format must be one of: text, markdown, html")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return Output{}, err
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("fetching %s: %w", input.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Output{}, fmt.Errorf("reading response: %w", err)
	}

	out := Output{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	switch format {
	case "html":
		out.Content = string(body)
	case "text":
		text, err := extractText(string(body))
		if err != nil {
			return Output{}, err
		}
		out.Content = text
	case "markdown":
		markdown, err := md.NewConverter("", true, nil).ConvertString(string(body))
		if err != nil {
			return Output{}, fmt.Errorf("converting to markdown: %w", err)
		}
		out.Content = markdown
	}
	return out, nil
}

// extractText strips scripts and styles and collapses the document to its
// visible text.
func extractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n"), nil
}
