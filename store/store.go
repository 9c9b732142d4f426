// Package store persists aggregated articles as one JSON file per article,
// keyed by article ID. The flat-file layout keeps runs inspectable with
// nothing but a text editor.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
)

// ArticleStore is a directory-backed article archive.
type ArticleStore struct {
	dir string
}

// ReadError describes a failure to read a single article file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// ListResult holds the articles that loaded cleanly plus per-file errors for
// those that did not. One corrupted file does not fail the listing.
type ListResult struct {
	Articles []news.Article
	Errors   []ReadError
}

// New opens (creating if needed) an article store rooted at dir.
func New(dir string) (*ArticleStore, error) {
	// 0700: owner-only access
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &ArticleStore{dir: dir}, nil
}

// Add writes one article, overwriting any previous record with the same ID.
func (s *ArticleStore) Add(a news.Article) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid article: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	// 0600: owner-only read/write
	if err := os.WriteFile(s.filename(a.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write article: %w", err)
	}
	return nil
}

// AddAll stores a batch of articles and returns how many were written. The
// batch keeps going past individual failures.
func (s *ArticleStore) AddAll(articles []news.Article) (int, []error) {
	var errs []error
	stored := 0
	for _, a := range articles {
		if err := s.Add(a); err != nil {
			errs = append(errs, err)
			continue
		}
		stored++
	}
	return stored, errs
}

// List loads every stored article, newest publish date first. A non-nil
// error means the directory itself could not be read.
func (s *ArticleStore) List() (*ListResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	result := &ListResult{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}

		var a news.Article
		if err := json.Unmarshal(data, &a); err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}

		result.Articles = append(result.Articles, a)
	}

	sort.Slice(result.Articles, func(i, j int) bool {
		return result.Articles[i].PublishedAt.After(result.Articles[j].PublishedAt)
	})

	return result, nil
}

// Get retrieves one article by ID. A missing article returns (nil, nil).
func (s *ArticleStore) Get(id uuid.UUID) (*news.Article, error) {
	data, err := os.ReadFile(s.filename(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read article: %w", err)
	}

	var a news.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal article: %w", err)
	}
	return &a, nil
}

// Delete removes one article by ID.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	if err := os.Remove(s.filename(id)); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

func (s *ArticleStore) filename(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}
