package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearchURL_EncodesQuery verifies query encoding into the endpoint
func TestSearchURL_EncodesQuery(t *testing.T) {
	d := BBC()

	assert.Equal(t, "https://www.bbc.com/search?q=Adam+Sandler", d.SearchURL("Adam Sandler"))
}

// TestSearchURL_NormalizesSlashes verifies base/path slash handling
func TestSearchURL_NormalizesSlashes(t *testing.T) {
	d := Descriptor{Name: "X", BaseURL: "https://x.com/", SearchPath: "find"}

	assert.Equal(t, "https://x.com/find?q=news", d.SearchURL("news"))
}

// TestResolveRef_Relative verifies relative hrefs resolve against the base
func TestResolveRef_Relative(t *testing.T) {
	d := BBC()

	assert.Equal(t, "https://www.bbc.com/news/123", d.ResolveRef("/news/123"))
}

// TestResolveRef_Absolute verifies absolute hrefs pass through
func TestResolveRef_Absolute(t *testing.T) {
	d := BBC()

	assert.Equal(t, "https://other.com/story", d.ResolveRef("https://other.com/story"))
}

// TestResolveRef_ProtocolRelative verifies protocol-relative hrefs pick up
// the base scheme
func TestResolveRef_ProtocolRelative(t *testing.T) {
	d := BBC()

	assert.Equal(t, "https://cdn.bbc.com/story", d.ResolveRef("//cdn.bbc.com/story"))
}

// TestResolveRef_Empty verifies blank hrefs resolve to nothing
func TestResolveRef_Empty(t *testing.T) {
	d := BBC()

	assert.Equal(t, "", d.ResolveRef("  "))
}

// TestWithDefaults verifies zero limits are filled in
func TestWithDefaults(t *testing.T) {
	d := Descriptor{Name: "X", BaseURL: "https://x.com", SearchPath: "/search"}.WithDefaults()

	assert.Equal(t, DefaultMaxResults, d.MaxResults)
	assert.Equal(t, DefaultTimeout, d.Timeout)
	assert.Equal(t, DefaultRetries, d.Retries)
}

// TestWithDefaults_KeepsExplicit verifies explicit limits survive
func TestWithDefaults_KeepsExplicit(t *testing.T) {
	d := Descriptor{
		Name: "X", BaseURL: "https://x.com", SearchPath: "/search",
		MaxResults: 5, Timeout: 10 * time.Second, Retries: 1,
	}.WithDefaults()

	assert.Equal(t, 5, d.MaxResults)
	assert.Equal(t, 10*time.Second, d.Timeout)
	assert.Equal(t, 1, d.Retries)
}

// TestValidate_RejectsBadDescriptors verifies descriptor validation
func TestValidate_RejectsBadDescriptors(t *testing.T) {
	cases := []struct {
		name string
		desc Descriptor
	}{
		{"empty name", Descriptor{BaseURL: "https://x.com", SearchPath: "/search"}},
		{"bad scheme", Descriptor{Name: "X", BaseURL: "ftp://x.com", SearchPath: "/search"}},
		{"empty search path", Descriptor{Name: "X", BaseURL: "https://x.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.desc.Validate())
		})
	}
}

// TestBBC verifies the built-in source configuration is usable
func TestBBC(t *testing.T) {
	d := BBC()
	require.NoError(t, d.Validate())

	sel := BBCSelectors()
	assert.NotEmpty(t, sel.Results)
	assert.NotEmpty(t, sel.Title)
	assert.NotEmpty(t, sel.Summary)
	assert.NotEmpty(t, sel.Body)
	assert.NotEmpty(t, sel.Date)
}
