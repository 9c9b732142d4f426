package news

import "strings"

// Keywords is the fixed keyword set the relevance filter matches against.
type Keywords []string

// DefaultKeywords returns the keyword set used when no configuration
// overrides it.
func DefaultKeywords() Keywords {
	return Keywords{"adam sandler", "sandler", "happy madison", "netflix", "comedy"}
}

// Match reports whether any keyword appears as a substring of the article's
// lowercased title and body. It is a pure function of the article's text.
//
// Matching is substring containment, not word-boundary matching: "sandler"
// inside "sandlerville" still counts. That makes the filter cheap and
// tolerant of inflected forms at the cost of occasional false positives.
func (k Keywords) Match(a Article) bool {
	text := strings.ToLower(a.Title + " " + a.Body)

	for _, keyword := range k {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}

// MatchText applies the same substring test to arbitrary text. Used by the
// link-scan fallback, which decides relevance before an article exists.
func (k Keywords) MatchText(text string) bool {
	text = strings.ToLower(text)

	for _, keyword := range k {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}
