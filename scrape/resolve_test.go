package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// TestResolve_FirstMatchWins verifies candidates are tried in order and the
// first one with matches wins, even when later candidates would also match
func TestResolve_FirstMatchWins(t *testing.T) {
	doc := parseHTML(t, `
	<html><body>
		<div class="b">one</div>
		<div class="b">two</div>
		<div class="c">three</div>
	</body></html>
	`)

	matches, used, ok := Resolve(doc, []string{".a", ".b", ".c"})

	require.True(t, ok)
	assert.Equal(t, ".b", used, "should skip the non-matching candidate")
	assert.Equal(t, 2, matches.Length(), "should not consider later candidates")
}

// TestResolve_PrimarySelector verifies the primary selector is preferred
// when it matches
func TestResolve_PrimarySelector(t *testing.T) {
	doc := parseHTML(t, `
	<html><body>
		<article class="primary">x</article>
		<article class="fallback">y</article>
	</body></html>
	`)

	_, used, ok := Resolve(doc, []string{".primary", ".fallback"})

	require.True(t, ok)
	assert.Equal(t, ".primary", used)
}

// TestResolve_NoMatch verifies the all-miss outcome is signalled without an
// error
func TestResolve_NoMatch(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>nothing here</p></body></html>`)

	matches, used, ok := Resolve(doc, []string{".a", ".b"})

	assert.False(t, ok)
	assert.Nil(t, matches)
	assert.Empty(t, used)
}

// TestResolve_EmptyCandidates verifies an empty candidate list resolves to
// no match
func TestResolve_EmptyCandidates(t *testing.T) {
	doc := parseHTML(t, `<html><body><p>content</p></body></html>`)

	_, _, ok := Resolve(doc, nil)

	assert.False(t, ok)
}

// TestResolve_InvalidSelectorSkipped verifies a malformed candidate matches
// nothing and the next candidate is still tried
func TestResolve_InvalidSelectorSkipped(t *testing.T) {
	doc := parseHTML(t, `<html><body><p class="ok">content</p></body></html>`)

	_, used, ok := Resolve(doc, []string{"[unclosed", ".ok"})

	require.True(t, ok)
	assert.Equal(t, ".ok", used)
}

// TestResolveIn_ScopedToSubtree verifies resolution inside a single element
// doesn't see siblings
func TestResolveIn_ScopedToSubtree(t *testing.T) {
	doc := parseHTML(t, `
	<html><body>
		<article id="one"><h3>First</h3></article>
		<article id="two"><h3>Second</h3></article>
	</body></html>
	`)

	item := doc.Find("#one")
	matches, _, ok := ResolveIn(item, []string{"h3"})

	require.True(t, ok)
	assert.Equal(t, 1, matches.Length())
	assert.Equal(t, "First", matches.Text())
}
