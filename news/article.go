package news

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Article represents a single extracted news story about the tracked
// subject, plus the metadata needed for reporting.
type Article struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// New creates an article with a fresh ID. The title is whitespace-normalized
// and the publish time falls back to the retrieval time when the source page
// didn't expose one.
func New(title, body, articleURL, source string, publishedAt time.Time) Article {
	now := time.Now()
	if publishedAt.IsZero() {
		publishedAt = now
	}

	return Article{
		ID:          uuid.New(),
		Title:       NormalizeWhitespace(title),
		Body:        strings.TrimSpace(body),
		URL:         articleURL,
		Source:      source,
		PublishedAt: publishedAt,
		RetrievedAt: now,
	}
}

// Validate checks the invariants an article must hold before it enters the
// output collection.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("article title is empty")
	}
	if a.Source == "" {
		return fmt.Errorf("article source is empty")
	}

	u, err := url.Parse(a.URL)
	if err != nil {
		return fmt.Errorf("invalid article URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("article URL must use http or https scheme")
	}
	if a.PublishedAt.IsZero() {
		return fmt.Errorf("article publish time is not set")
	}

	return nil
}

// UpgradeBody replaces the body with candidate only when the candidate is
// longer. The body of an article may only grow during the pipeline; a detail
// fetch that produced less text than the search-page summary is discarded.
func (a *Article) UpgradeBody(candidate string) {
	a.Body = MergeBody(a.Body, candidate)
}

// MergeBody picks between the current body and a newly extracted one,
// keeping whichever is longer.
func MergeBody(old, new string) string {
	if len(new) > len(old) {
		return new
	}
	return old
}

// NormalizeWhitespace collapses runs of spaces and newlines into single
// spaces and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DedupKey returns the canonical form of a URL used for duplicate detection
// across sources: lowercased, with any trailing slash removed. Two articles
// whose URLs differ only in case or a trailing slash are the same article.
func DedupKey(rawURL string) string {
	key := strings.ToLower(strings.TrimSpace(rawURL))
	key = strings.TrimSuffix(key, "/")
	return key
}
