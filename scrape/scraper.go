package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
	"github.com/PauloMNogueira/adam-sandler-news-agent/sources"
)

// DefaultUserAgent is the browser-like identification sent with every
// request. Several sites serve a degraded or empty page to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	// minSummaryLength rejects summary candidates too short to be a real
	// excerpt (link labels, timestamps).
	minSummaryLength = 10
	// minFragmentLength filters boilerplate fragments out of extracted body
	// text (cookie banners, captions).
	minFragmentLength = 20
	// minLinkTextLength rejects navigation links during the link-scan
	// fallback.
	minLinkTextLength = 10
)

// Scraper is the capability every source implements. Concrete scrapers are
// registered in an aggregate.Repository by name.
//
// Search never returns an error: transport and parse failures are
// source-local, logged, and surface as an empty (or partial) result so one
// broken site cannot abort the run.
type Scraper interface {
	Name() string
	Search(ctx context.Context, client *http.Client, query string, maxResults int) []news.Article
}

// SiteScraper scrapes one external site described by a Descriptor and a
// SelectorSet. All site-specific knowledge lives in that configuration; the
// extraction algorithm is shared.
type SiteScraper struct {
	desc      sources.Descriptor
	selectors sources.SelectorSet
	keywords  news.Keywords
	userAgent string
}

// NewSiteScraper creates a scraper for the given site configuration. The
// keyword set drives the relevance filter applied to every extracted record.
func NewSiteScraper(desc sources.Descriptor, selectors sources.SelectorSet, keywords news.Keywords) *SiteScraper {
	return &SiteScraper{
		desc:      desc.WithDefaults(),
		selectors: selectors,
		keywords:  keywords,
		userAgent: DefaultUserAgent,
	}
}

// NewBBC returns the scraper for the built-in BBC News source.
func NewBBC(keywords news.Keywords) *SiteScraper {
	return NewSiteScraper(sources.BBC(), sources.BBCSelectors(), keywords)
}

// Name returns the source identifier recorded on extracted articles.
func (s *SiteScraper) Name() string {
	return s.desc.Name
}

// Descriptor returns the site configuration the scraper was built from.
func (s *SiteScraper) Descriptor() sources.Descriptor {
	return s.desc
}

// Search performs one search against the site and returns the relevant
// articles it could extract, at most maxResults of them, in page order.
//
// A failed or non-200 search request yields an empty result: the failure is
// logged and stays local to this source.
func (s *SiteScraper) Search(ctx context.Context, client *http.Client, query string, maxResults int) []news.Article {
	if maxResults <= 0 {
		maxResults = s.desc.MaxResults
	}

	searchURL := s.desc.SearchURL(query)
	doc, _, err := s.fetchDocument(ctx, client, searchURL)
	if err != nil {
		log.Printf("WARN: %s: search fetch failed: %v", s.desc.Name, err)
		return nil
	}

	candidates := s.collectCandidates(doc, maxResults)
	if candidates == nil {
		// No result selector matched. Either the query has no hits or the
		// site was redesigned; scan raw links before giving up.
		log.Printf("INFO: %s: no result selector matched, trying link scan", s.desc.Name)
		candidates = s.linkScan(doc, maxResults)
	}

	// Detail fetches run strictly after the whole result list is parsed.
	kept := make([]news.Article, 0, len(candidates))
	for i := range candidates {
		article := candidates[i]
		s.fetchBody(ctx, client, &article)

		if s.keywords.Match(article) {
			kept = append(kept, article)
		} else {
			log.Printf("INFO: %s: dropped irrelevant article %q", s.desc.Name, article.Title)
		}
	}

	if len(kept) > maxResults {
		kept = kept[:maxResults]
	}
	return kept
}

// collectCandidates parses the search page into partial article records, up
// to maxResults of them. Returns nil when no result selector matched, which
// is distinct from an empty match yielding zero usable items.
func (s *SiteScraper) collectCandidates(doc *goquery.Document, maxResults int) []news.Article {
	items, used, ok := Resolve(doc, s.selectors.Results)
	if !ok {
		return nil
	}
	log.Printf("INFO: %s: selector %q matched %d result items", s.desc.Name, used, items.Length())

	candidates := make([]news.Article, 0, maxResults)
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(candidates) >= maxResults {
			return false
		}

		article, ok := s.extractCandidate(item)
		if !ok {
			return true
		}

		candidates = append(candidates, article)
		return true
	})

	return candidates
}

// extractCandidate builds a partial article record from one result-list
// element. Items without a usable title or link are skipped.
func (s *SiteScraper) extractCandidate(item *goquery.Selection) (news.Article, bool) {
	title := firstText(item, s.selectors.Title, 1)
	if title == "" {
		return news.Article{}, false
	}

	href := firstHref(item)
	articleURL := s.desc.ResolveRef(href)
	if !isHTTP(articleURL) {
		return news.Article{}, false
	}

	// Short summary from the result card; the title stands in when the card
	// carries no real excerpt.
	summary := firstText(item, s.selectors.Summary, minSummaryLength)
	if summary == "" {
		summary = title
	}

	published := s.extractDate(item)

	return news.New(title, summary, articleURL, s.desc.Name, published), true
}

// linkScan is the degraded path used when no result selector matches: walk
// every anchor on the page and keep the ones whose text or target mentions a
// keyword.
func (s *SiteScraper) linkScan(doc *goquery.Document, maxResults int) []news.Article {
	var candidates []news.Article

	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if len(candidates) >= maxResults {
			return false
		}

		text := news.NormalizeWhitespace(link.Text())
		if len(text) < minLinkTextLength {
			return true
		}

		href, _ := link.Attr("href")
		if !s.keywords.MatchText(text) && !s.keywords.MatchText(href) {
			return true
		}

		articleURL := s.desc.ResolveRef(href)
		if !isHTTP(articleURL) {
			return true
		}

		candidates = append(candidates, news.New(text, text, articleURL, s.desc.Name, time.Time{}))
		return true
	})

	log.Printf("INFO: %s: link scan produced %d candidates", s.desc.Name, len(candidates))
	return candidates
}

// fetchBody fetches the article page and tries to upgrade the record's body
// with the full text. Any failure leaves the record with the body it already
// has; one bad article never aborts the batch.
func (s *SiteScraper) fetchBody(ctx context.Context, client *http.Client, article *news.Article) {
	doc, raw, err := s.fetchDocument(ctx, client, article.URL)
	if err != nil {
		log.Printf("WARN: %s: detail fetch failed for %s: %v", s.desc.Name, article.URL, err)
		return
	}

	body := s.extractBody(doc)
	if body == "" {
		body = s.readabilityFallback(raw, article)
	}
	if body != "" {
		article.UpgradeBody(body)
	}
}

// extractBody concatenates the text of all elements matched by the first
// successful body selector, dropping fragments too short to be prose.
func (s *SiteScraper) extractBody(doc *goquery.Document) string {
	matches, _, ok := Resolve(doc, s.selectors.Body)
	if !ok {
		return ""
	}

	var parts []string
	matches.Each(func(_ int, el *goquery.Selection) {
		text := news.NormalizeWhitespace(el.Text())
		if len(text) >= minFragmentLength {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, " ")
}

// readabilityFallback runs a generic content extractor over the raw page
// when none of the body selectors recognize its structure. Also backfills
// the author from the extracted byline.
func (s *SiteScraper) readabilityFallback(raw []byte, article *news.Article) string {
	pageURL, err := url.Parse(article.URL)
	if err != nil {
		return ""
	}

	parsed, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		log.Printf("INFO: %s: readability fallback failed for %s: %v", s.desc.Name, article.URL, err)
		return ""
	}

	if article.Author == "" && parsed.Byline != "" {
		article.Author = news.NormalizeWhitespace(parsed.Byline)
	}
	return news.NormalizeWhitespace(parsed.TextContent)
}

// extractDate pulls a publish time out of a result element. Candidates may
// match <time> elements (datetime attribute preferred) or plain-text dates
// like "22 Aug 2017"; dateparse handles the format sniffing. The zero time
// means "undeterminable" and callers fall back to the retrieval time.
func (s *SiteScraper) extractDate(item *goquery.Selection) time.Time {
	for _, candidate := range s.selectors.Date {
		el := item.Find(candidate).First()
		if el.Length() == 0 {
			continue
		}

		if datetime, ok := el.Attr("datetime"); ok && datetime != "" {
			if t, err := dateparse.ParseAny(datetime); err == nil {
				return t
			}
		}

		text := strings.TrimSpace(el.Text())
		if text == "" {
			continue
		}
		if t, err := dateparse.ParseAny(text); err == nil {
			return t
		}
		log.Printf("INFO: %s: unparseable date %q", s.desc.Name, text)
	}

	return time.Time{}
}

// fetchDocument GETs a URL and parses it as HTML, retrying transient
// failures per the descriptor's retry budget. The raw bytes are returned
// alongside the parsed document for the readability fallback.
func (s *SiteScraper) fetchDocument(ctx context.Context, client *http.Client, rawURL string) (*goquery.Document, []byte, error) {
	var lastErr error

	for attempt := 0; attempt < s.desc.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		doc, raw, err := s.fetchOnce(ctx, client, rawURL)
		if err == nil {
			return doc, raw, nil
		}
		lastErr = err
	}

	return nil, nil, lastErr
}

func (s *SiteScraper) fetchOnce(ctx context.Context, client *http.Client, rawURL string) (*goquery.Document, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.desc.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, raw, nil
}

// firstText returns the first candidate selector whose first match carries
// normalized text of at least minLen characters.
func firstText(item *goquery.Selection, candidates []string, minLen int) string {
	for _, candidate := range candidates {
		el := item.Find(candidate).First()
		if el.Length() == 0 {
			continue
		}
		text := news.NormalizeWhitespace(el.Text())
		if len(text) >= minLen {
			return text
		}
	}
	return ""
}

// firstHref finds the link for a result item: the first descendant anchor,
// or the item itself when the whole card is an anchor.
func firstHref(item *goquery.Selection) string {
	if href, ok := item.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	if item.Is("a") {
		if href, ok := item.Attr("href"); ok {
			return href
		}
	}
	return ""
}

func isHTTP(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}
