package sources

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Default limits applied when a descriptor leaves them unset.
const (
	DefaultMaxResults = 20
	DefaultTimeout    = 30 * time.Second
	DefaultRetries    = 3
)

// Descriptor is the static configuration for one external news site. It is
// created at startup and never mutated during a run.
type Descriptor struct {
	Name       string        `json:"name" yaml:"name"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	SearchPath string        `json:"search_path" yaml:"search_path"`
	MaxResults int           `json:"max_results" yaml:"max_results"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	Retries    int           `json:"retries" yaml:"retries"`
}

// SelectorSet holds the ordered fallback selector candidates for one site.
// Each list is tried in order; earlier entries are the primary selectors for
// the current markup, later ones are degraded fallbacks for older layouts.
type SelectorSet struct {
	// Results locates result-list items on a search page.
	Results []string `json:"results" yaml:"results"`
	// Title locates the headline within a result item.
	Title []string `json:"title" yaml:"title"`
	// Summary locates a short excerpt within a result item.
	Summary []string `json:"summary" yaml:"summary"`
	// Body locates body text elements on an article page.
	Body []string `json:"body" yaml:"body"`
	// Date locates the publish date within a result item.
	Date []string `json:"date" yaml:"date"`
}

// Validate reports whether the descriptor can be used to build search
// requests.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("source name is empty")
	}

	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https scheme")
	}

	if strings.TrimSpace(d.SearchPath) == "" {
		return fmt.Errorf("search path is empty")
	}

	return nil
}

// WithDefaults returns a copy of the descriptor with zero-valued limits
// replaced by the package defaults.
func (d Descriptor) WithDefaults() Descriptor {
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultMaxResults
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	if d.Retries <= 0 {
		d.Retries = DefaultRetries
	}
	return d
}

// SearchURL builds the search request URL for the given query, with the
// query URL-encoded into the q parameter.
func (d *Descriptor) SearchURL(query string) string {
	base := strings.TrimSuffix(d.BaseURL, "/")
	path := d.SearchPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s%s?q=%s", base, path, url.QueryEscape(query))
}

// ResolveRef resolves a possibly relative or protocol-relative href against
// the descriptor's base URL. Returns "" when either URL cannot be parsed.
func (d *Descriptor) ResolveRef(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return base.ResolveReference(ref).String()
}

// BBC returns the descriptor for BBC News, the built-in source.
func BBC() Descriptor {
	return Descriptor{
		Name:       "BBC News",
		BaseURL:    "https://www.bbc.com",
		SearchPath: "/search",
		MaxResults: DefaultMaxResults,
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
	}
}

// BBCSelectors returns the selector fallback lists for BBC News. The BBC
// serves different markup depending on page version, so each list carries
// several known-good selectors in priority order.
func BBCSelectors() SelectorSet {
	return SelectorSet{
		Results: []string{
			`[data-testid="newport-card"]`,
			`div[data-testid="search-results"] article`,
			`.ssrcss-1f3bvyz-Stack`,
			`article`,
			`.media__content`,
		},
		Title: []string{
			`h3`, `h2`, `h1`,
			`.media__title`,
			`[data-testid="card-headline"]`,
		},
		Summary: []string{
			`[data-component="text-block"]`,
			`[data-testid="card-description"]`,
			`.media__summary`,
			`p`,
			`.ssrcss-1q0x1qg-Paragraph`,
			`[data-testid="card-text"]`,
		},
		Body: []string{
			`[data-component="text-block"]`,
			`.ssrcss-11r1m41-RichTextComponentWrapper`,
			`div[data-component="text-block"] p`,
			`.story-body__inner p`,
		},
		Date: []string{
			`span[data-testid="card-metadata-lastupdated"]`,
			`time`,
		},
	}
}
