// Package aggregate coordinates the per-source scrapers: one shared HTTP
// session, sequential visitation with a pause between sources, and URL-based
// deduplication of the merged output.
package aggregate

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
	"github.com/PauloMNogueira/adam-sandler-news-agent/scrape"
)

const (
	// DefaultPause is the fixed delay between sources. Deliberately simple
	// rate limiting, not adaptive.
	DefaultPause = 1 * time.Second
	// DefaultSessionTimeout bounds the shared client; per-request deadlines
	// come from each descriptor.
	DefaultSessionTimeout = 60 * time.Second
)

// Repository merges the output of registered scrapers. Sources are visited
// one at a time in registration order, so output ordering is deterministic
// given deterministic responses.
type Repository struct {
	client   *http.Client
	scrapers map[string]scrape.Scraper
	order    []string
	pause    time.Duration
}

// Option configures a Repository.
type Option func(*Repository)

// WithPause overrides the inter-source pause. A zero pause disables it.
func WithPause(pause time.Duration) Option {
	return func(r *Repository) { r.pause = pause }
}

// WithClient substitutes the shared HTTP client.
func WithClient(client *http.Client) Option {
	return func(r *Repository) { r.client = client }
}

// New creates a repository owning one shared HTTP session that all scrapers
// reuse for the lifetime of the run.
func New(opts ...Option) *Repository {
	r := &Repository{
		client:   &http.Client{Timeout: DefaultSessionTimeout},
		scrapers: make(map[string]scrape.Scraper),
		pause:    DefaultPause,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a scraper under its own name. Registering the same name
// twice replaces the earlier scraper but keeps its visitation position.
func (r *Repository) Register(s scrape.Scraper) {
	name := s.Name()
	if _, exists := r.scrapers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.scrapers[name] = s
}

// Sources returns the registered source names in visitation order.
func (r *Repository) Sources() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FetchAll runs every registered scraper against the query and returns the
// merged, deduplicated articles. A failing source contributes an empty
// result; FetchAll itself never fails because of one source. maxPerSource <=
// 0 leaves each source's own cap in effect.
func (r *Repository) FetchAll(ctx context.Context, query string, maxPerSource int) []news.Article {
	var all []news.Article

	for i, name := range r.order {
		if i > 0 && r.pause > 0 {
			// Fixed pause between sources, abandoned early on cancellation.
			select {
			case <-ctx.Done():
				log.Printf("WARN: aggregation cancelled, returning partial results: %v", ctx.Err())
				return dedupe(all)
			case <-time.After(r.pause):
			}
		}

		scraper := r.scrapers[name]
		log.Printf("INFO: searching %s for %q", name, query)

		found := scraper.Search(ctx, r.client, query, maxPerSource)
		log.Printf("INFO: %s returned %d articles", name, len(found))

		all = append(all, found...)
	}

	return dedupe(all)
}

// dedupe drops articles whose normalized URL was already seen. Runs after
// all sources complete; the first-seen record wins even when a later
// duplicate carries a longer body.
func dedupe(articles []news.Article) []news.Article {
	seen := make(map[string]bool, len(articles))
	unique := make([]news.Article, 0, len(articles))

	for _, a := range articles {
		key := news.DedupKey(a.URL)
		if seen[key] {
			log.Printf("INFO: dropping duplicate %s", a.URL)
			continue
		}
		seen[key] = true
		unique = append(unique, a)
	}

	if dropped := len(articles) - len(unique); dropped > 0 {
		log.Printf("INFO: deduplication removed %d of %d articles", dropped, len(articles))
	}

	return unique
}
