// Package rss adapts RSS and Atom feeds into the scraper pipeline. A feed is
// treated as a pre-run search: every item is converted to an article and then
// filtered for relevance, so feed sources plug into the aggregation
// repository exactly like HTML sources.
package rss

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
	"github.com/PauloMNogueira/adam-sandler-news-agent/scrape"
)

// FeedScraper reads a single RSS or Atom feed. gofeed detects the format, so
// one scraper covers both.
type FeedScraper struct {
	name     string
	feedURL  string
	keywords news.Keywords
}

var _ scrape.Scraper = (*FeedScraper)(nil)

// NewFeedScraper creates a scraper for one feed URL. Nil keywords fall back
// to the default set.
func NewFeedScraper(name, feedURL string, keywords news.Keywords) *FeedScraper {
	if len(keywords) == 0 {
		keywords = news.DefaultKeywords()
	}
	return &FeedScraper{name: name, feedURL: feedURL, keywords: keywords}
}

// Name returns the source name used for registration and attribution.
func (f *FeedScraper) Name() string { return f.name }

// Search fetches the feed and returns the relevant items as articles. Feeds
// cannot be queried server-side, so the query acts as one more accepted
// keyword during filtering. Fetch or parse failures are logged and yield an
// empty result.
func (f *FeedScraper) Search(ctx context.Context, client *http.Client, query string, maxResults int) []news.Article {
	fp := gofeed.NewParser()
	fp.Client = client
	fp.UserAgent = scrape.DefaultUserAgent

	feed, err := fp.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		log.Printf("WARN: %s: fetching feed %s: %v", f.name, f.feedURL, err)
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))

	var articles []news.Article
	for _, item := range feed.Items {
		a := f.itemToArticle(item)
		if !f.keywords.Match(a) && !matchesQuery(a, query) {
			continue
		}
		articles = append(articles, a)
		if maxResults > 0 && len(articles) >= maxResults {
			break
		}
	}

	log.Printf("INFO: %s: %d of %d feed items kept", f.name, len(articles), len(feed.Items))
	return articles
}

// itemToArticle maps one feed entry onto an article. gofeed normalizes RSS
// <description> and Atom <summary>/<content> into Description, and <pubDate>
// and <published>/<updated> into the parsed timestamp fields.
func (f *FeedScraper) itemToArticle(item *gofeed.Item) news.Article {
	body := stripHTML(item.Description)
	if content := stripHTML(item.Content); len(content) > len(body) {
		body = content
	}
	if body == "" {
		body = item.Title
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	a := news.New(item.Title, body, item.Link, f.name, publishedAt)

	if item.Author != nil && item.Author.Name != "" {
		a.Author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		a.Author = item.Authors[0].Name
	} else if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		a.Author = item.DublinCoreExt.Creator[0]
	}

	return a
}

func matchesQuery(a news.Article, query string) bool {
	if query == "" {
		return false
	}
	text := strings.ToLower(a.Title + " " + a.Body)
	return strings.Contains(text, query)
}

// stripHTML flattens feed markup into plain text. Feed descriptions are
// frequently HTML fragments; goquery tolerates bare text as well.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return news.NormalizeWhitespace(s)
	}
	return news.NormalizeWhitespace(doc.Text())
}
