package scrape

import "github.com/PuerkitoBio/goquery"

// Resolve evaluates candidate selectors in order against the document and
// returns the first non-empty match set together with the selector that
// produced it. Earlier candidates are the primary selectors for the current
// markup; later ones are fallbacks for older layouts.
//
// ok is false when every candidate matched nothing. That is a valid terminal
// outcome meaning "page structure unrecognized", not an error: callers log it
// and degrade, they don't fail.
func Resolve(doc *goquery.Document, candidates []string) (*goquery.Selection, string, bool) {
	return ResolveIn(doc.Selection, candidates)
}

// ResolveIn is Resolve scoped to an element subtree rather than a whole
// document. The same first-match policy is used for locating result-list
// items on a search page and body text on an article page.
func ResolveIn(root *goquery.Selection, candidates []string) (*goquery.Selection, string, bool) {
	for _, candidate := range candidates {
		matches := root.Find(candidate)
		if matches.Length() > 0 {
			return matches, candidate, true
		}
	}

	return nil, "", false
}
