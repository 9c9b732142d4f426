package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Entertainment Wire</title>
    <link>https://wire.example</link>
    <item>
      <title>Adam Sandler announces stand-up tour</title>
      <link>https://wire.example/sandler-tour</link>
      <description>&lt;p&gt;The comedian returns to the road &lt;b&gt;this fall&lt;/b&gt;.&lt;/p&gt;</description>
      <author>reporter@wire.example (Dana Reyes)</author>
      <pubDate>Mon, 12 Feb 2024 09:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Local council approves new bridge</title>
      <link>https://wire.example/bridge</link>
      <description>Construction begins in the spring.</description>
      <pubDate>Tue, 13 Feb 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Netflix renews three series</title>
      <link>https://wire.example/netflix-renewals</link>
      <description>The streamer extended its biggest comedies.</description>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_FiltersAndConverts(t *testing.T) {
	srv := serveFeed(t, sampleFeed, http.StatusOK)
	scraper := NewFeedScraper("wire", srv.URL, news.DefaultKeywords())

	got := scraper.Search(context.Background(), srv.Client(), "Adam Sandler", 0)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Adam Sandler announces stand-up tour", first.Title)
	assert.Equal(t, "https://wire.example/sandler-tour", first.URL)
	assert.Equal(t, "wire", first.Source)
	assert.Equal(t, "The comedian returns to the road this fall.", first.Body)
	assert.Equal(t, time.Date(2024, 2, 12, 9, 30, 0, 0, time.UTC), first.PublishedAt.UTC())
	assert.NotEmpty(t, first.ID)

	// "netflix" is a default keyword; the bridge story is dropped.
	assert.Equal(t, "Netflix renews three series", got[1].Title)
}

func TestSearch_QueryActsAsExtraKeyword(t *testing.T) {
	srv := serveFeed(t, sampleFeed, http.StatusOK)
	scraper := NewFeedScraper("wire", srv.URL, news.Keywords{"nothing-matches-this"})

	got := scraper.Search(context.Background(), srv.Client(), "bridge", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Local council approves new bridge", got[0].Title)
}

func TestSearch_MaxResultsCapsOutput(t *testing.T) {
	srv := serveFeed(t, sampleFeed, http.StatusOK)
	scraper := NewFeedScraper("wire", srv.URL, nil)

	got := scraper.Search(context.Background(), srv.Client(), "Adam Sandler", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Adam Sandler announces stand-up tour", got[0].Title)
}

func TestSearch_ServerErrorReturnsEmpty(t *testing.T) {
	srv := serveFeed(t, "oops", http.StatusInternalServerError)
	scraper := NewFeedScraper("wire", srv.URL, nil)

	got := scraper.Search(context.Background(), srv.Client(), "Adam Sandler", 0)
	assert.Empty(t, got)
}

func TestSearch_MissingDateFallsBackToRetrieval(t *testing.T) {
	srv := serveFeed(t, sampleFeed, http.StatusOK)
	scraper := NewFeedScraper("wire", srv.URL, nil)

	before := time.Now()
	got := scraper.Search(context.Background(), srv.Client(), "Adam Sandler", 0)
	require.Len(t, got, 2)

	// The Netflix item carries no pubDate.
	assert.False(t, got[1].PublishedAt.Before(before))
}
