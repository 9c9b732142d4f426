// Package report assembles aggregated articles into the plain-text and HTML
// reports the agent emails and archives.
package report

import (
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
)

const (
	// excerptLength caps the per-article excerpt shown in report bodies.
	excerptLength = 200
	// summaryHighlights is how many articles the text summary lists.
	summaryHighlights = 5
)

// Report is a titled snapshot of one aggregation run.
type Report struct {
	Title       string         `json:"title"`
	GeneratedAt time.Time      `json:"generated_at"`
	Articles    []news.Article `json:"articles"`
}

// New creates an empty report. An empty title gets the dated default.
func New(title string, generatedAt time.Time) *Report {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle(generatedAt)
	}
	return &Report{Title: title, GeneratedAt: generatedAt}
}

// DefaultTitle is the title used when none is configured.
func DefaultTitle(at time.Time) string {
	return fmt.Sprintf("Adam Sandler News Report - %s", at.Format("2006-01-02"))
}

// Add appends one article, skipping IDs the report already holds.
func (r *Report) Add(a news.Article) {
	for _, existing := range r.Articles {
		if existing.ID == a.ID {
			return
		}
	}
	r.Articles = append(r.Articles, a)
}

// AddAll appends a batch of articles through Add.
func (r *Report) AddAll(articles []news.Article) {
	for _, a := range articles {
		r.Add(a)
	}
}

// Count returns the number of articles in the report.
func (r *Report) Count() int { return len(r.Articles) }

// SourceCounts tallies articles per source, preserving first-appearance
// order of the sources.
func (r *Report) SourceCounts() ([]string, map[string]int) {
	counts := make(map[string]int)
	var order []string
	for _, a := range r.Articles {
		if _, seen := counts[a.Source]; !seen {
			order = append(order, a.Source)
		}
		counts[a.Source]++
	}
	return order, counts
}

// Summary renders the plain-text report body: header, per-source tally, and
// the first few articles.
func (r *Report) Summary() string {
	if len(r.Articles) == 0 {
		return "No news found about Adam Sandler."
	}

	order, counts := r.SourceCounts()
	parts := make([]string, 0, len(order))
	for _, source := range order {
		parts = append(parts, fmt.Sprintf("%s: %d", source, counts[source]))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Title)
	fmt.Fprintf(&b, "Generated at: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total articles found: %d\n", len(r.Articles))
	fmt.Fprintf(&b, "Sources consulted: %s\n\n", strings.Join(parts, ", "))
	b.WriteString("Top stories:\n")

	shown := len(r.Articles)
	if shown > summaryHighlights {
		shown = summaryHighlights
	}
	for i, a := range r.Articles[:shown] {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "   Source: %s\n", a.Source)
		fmt.Fprintf(&b, "   Date: %s\n", a.PublishedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "   URL: %s\n", a.URL)
	}

	if rest := len(r.Articles) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n... and %d more articles.\n", rest)
	}

	return b.String()
}

// Excerpt shortens an article body on sentence boundaries, keeping whole
// sentences while they fit under the limit.
func Excerpt(body string) string {
	if len(body) <= excerptLength {
		return body
	}

	sentences := strings.Split(body, ". ")
	var out string
	for _, sentence := range sentences {
		if len(out)+len(sentence) > excerptLength {
			break
		}
		out += sentence + ". "
	}
	return strings.TrimSpace(out)
}

type htmlArticle struct {
	Title   string
	Source  string
	Date    string
	URL     string
	Excerpt string
	Author  string
}

type htmlData struct {
	Title       string
	GeneratedAt string
	Total       int
	Sources     []string // pre-formatted "name: count" lines
	Articles    []htmlArticle
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
    .header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
    .sources-summary { background-color: white; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
    .news-item { background-color: white; margin-bottom: 20px; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    .news-title { font-size: 18px; font-weight: bold; color: #2c3e50; margin-bottom: 10px; }
    .news-meta { color: #7f8c8d; font-size: 14px; margin-bottom: 15px; }
    .news-meta a { color: #3498db; text-decoration: none; }
    .news-meta a:hover { text-decoration: underline; }
    .news-summary { line-height: 1.6; color: #34495e; }
  </style>
</head>
<body>
  <div class="header">
    <h1>{{.Title}}</h1>
    <p>Generated at: {{.GeneratedAt}}</p>
    <p>Total articles: {{.Total}}</p>
  </div>
  <div class="sources-summary">
    <h3>Sources:</h3>
    <ul>
{{- range .Sources}}
      <li>{{.}}</li>
{{- end}}
    </ul>
  </div>
  <h2>Articles:</h2>
{{- range .Articles}}
  <div class="news-item">
    <div class="news-title">{{.Title}}</div>
    <div class="news-meta">
      Source: {{.Source}} |
      Date: {{.Date}} |
      {{if .Author}}By {{.Author}} |{{end}}
      <a href="{{.URL}}" target="_blank">Read full story</a>
    </div>
    <div class="news-summary">{{.Excerpt}}</div>
  </div>
{{- end}}
</body>
</html>
`))

// HTML renders the report as a standalone HTML document. Article text is
// escaped by the template engine.
func (r *Report) HTML() (string, error) {
	order, counts := r.SourceCounts()
	data := htmlData{
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt.Format("2006-01-02 15:04"),
		Total:       len(r.Articles),
	}
	for _, source := range order {
		data.Sources = append(data.Sources, fmt.Sprintf("%s: %d articles", source, counts[source]))
	}
	for _, a := range r.Articles {
		data.Articles = append(data.Articles, htmlArticle{
			Title:   a.Title,
			Source:  a.Source,
			Date:    a.PublishedAt.Format("2006-01-02"),
			URL:     a.URL,
			Excerpt: Excerpt(a.Body),
			Author:  a.Author,
		})
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}

// SaveHTML writes the rendered HTML report to path, appending the .html
// extension when missing.
func (r *Report) SaveHTML(path string) (string, error) {
	html, err := r.HTML()
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(path, ".html") {
		path += ".html"
	}
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// SaveText writes the plain-text summary to path, appending the .txt
// extension when missing.
func (r *Report) SaveText(path string) (string, error) {
	if !strings.HasSuffix(path, ".txt") {
		path += ".txt"
	}
	if err := os.WriteFile(path, []byte(r.Summary()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// TestReport builds the fixed single-article report used to verify email
// delivery end to end.
func TestReport(at time.Time) *Report {
	r := New(fmt.Sprintf("Test Report - Adam Sandler News Agent - %s", at.Format("2006-01-02 15:04")), at)
	a := news.New(
		"Test - Adam Sandler announces new project",
		"This is a test article used to verify that the Adam Sandler News Agent report pipeline is operational.",
		"https://example.com/test-news",
		"Test System",
		at,
	)
	a.Author = "Automated System"
	r.Add(a)
	return r
}
