package sources

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for source operations
var (
	ErrSourceNotFound  = errors.New("source not found")
	ErrDuplicateSource = errors.New("source with this name already exists")
)

// Store persists source descriptors and their selector sets using SQLite,
// so sites can be added or retired without a rebuild.
type Store struct {
	db *sql.DB
}

// Source is a stored descriptor plus its selector configuration and
// bookkeeping fields.
type Source struct {
	SourceID   uuid.UUID   `json:"source_id"`
	Descriptor Descriptor  `json:"descriptor"`
	Selectors  SelectorSet `json:"selectors"`
	EnabledAt  *time.Time  `json:"enabled_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// IsEnabled returns true if the source is currently enabled.
func (s *Source) IsEnabled() bool {
	return s.EnabledAt != nil
}

// NewStore creates a source store backed by the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the sources table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		source_id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		base_url TEXT NOT NULL,
		search_path TEXT NOT NULL,
		max_results INTEGER NOT NULL,
		timeout_seconds INTEGER NOT NULL,
		retries INTEGER NOT NULL,
		selectors TEXT NOT NULL,
		enabled_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSource stores a new source. The descriptor's zero-valued limits are
// filled in with defaults before storage.
func (s *Store) CreateSource(desc Descriptor, selectors SelectorSet, enabled bool) (*Source, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	desc = desc.WithDefaults()

	now := time.Now()
	source := &Source{
		SourceID:   uuid.New(),
		Descriptor: desc,
		Selectors:  selectors,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if enabled {
		source.EnabledAt = &now
	}

	selectorsJSON, err := json.Marshal(selectors)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal selectors: %w", err)
	}

	query := `
		INSERT INTO sources (
			source_id, name, base_url, search_path, max_results,
			timeout_seconds, retries, selectors, enabled_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		source.SourceID.String(),
		desc.Name,
		desc.BaseURL,
		desc.SearchPath,
		desc.MaxResults,
		int(desc.Timeout.Seconds()),
		desc.Retries,
		string(selectorsJSON),
		formatTime(source.EnabledAt),
		formatTime(&source.CreatedAt),
		formatTime(&source.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "unique constraint") {
			return nil, ErrDuplicateSource
		}
		return nil, fmt.Errorf("failed to insert source: %w", err)
	}

	return source, nil
}

// GetSource retrieves a source by ID.
func (s *Store) GetSource(sourceID uuid.UUID) (*Source, error) {
	query := selectColumns + " FROM sources WHERE source_id = ?"

	row := s.db.QueryRow(query, sourceID.String())
	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, err
	}

	return source, nil
}

// GetSourceByName retrieves a source by its descriptor name.
func (s *Store) GetSourceByName(name string) (*Source, error) {
	query := selectColumns + " FROM sources WHERE name = ?"

	row := s.db.QueryRow(query, name)
	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, err
	}

	return source, nil
}

// ListSources returns all stored sources in creation order.
func (s *Store) ListSources() ([]Source, error) {
	query := selectColumns + " FROM sources ORDER BY created_at, name"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *source)
	}

	return out, rows.Err()
}

// ListEnabledSources returns only the sources that are currently enabled.
func (s *Store) ListEnabledSources() ([]Source, error) {
	all, err := s.ListSources()
	if err != nil {
		return nil, err
	}

	enabled := make([]Source, 0, len(all))
	for _, src := range all {
		if src.IsEnabled() {
			enabled = append(enabled, src)
		}
	}
	return enabled, nil
}

// SetEnabled enables or disables a source.
func (s *Store) SetEnabled(sourceID uuid.UUID, enabled bool) error {
	now := time.Now()

	var enabledAt any
	if enabled {
		enabledAt = formatTime(&now)
	}

	result, err := s.db.Exec(
		"UPDATE sources SET enabled_at = ?, updated_at = ? WHERE source_id = ?",
		enabledAt, formatTime(&now), sourceID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSourceNotFound
	}

	return nil
}

// DeleteSource removes a source.
func (s *Store) DeleteSource(sourceID uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM sources WHERE source_id = ?", sourceID.String())
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSourceNotFound
	}

	return nil
}

const selectColumns = `
	SELECT source_id, name, base_url, search_path, max_results,
	       timeout_seconds, retries, selectors, enabled_at, created_at, updated_at
`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSource parses one SQL row into a Source. Shared between GetSource,
// GetSourceByName, and ListSources.
func scanSource(row rowScanner) (*Source, error) {
	var sourceIDStr, name, baseURL, searchPath, selectorsJSON string
	var createdAtStr, updatedAtStr string
	var enabledAtStr sql.NullString
	var maxResults, timeoutSeconds, retries int

	err := row.Scan(
		&sourceIDStr, &name, &baseURL, &searchPath, &maxResults,
		&timeoutSeconds, &retries, &selectorsJSON,
		&enabledAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	sourceID, err := uuid.Parse(sourceIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source ID: %w", err)
	}

	var selectors SelectorSet
	if err := json.Unmarshal([]byte(selectorsJSON), &selectors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selectors: %w", err)
	}

	source := &Source{
		SourceID: sourceID,
		Descriptor: Descriptor{
			Name:       name,
			BaseURL:    baseURL,
			SearchPath: searchPath,
			MaxResults: maxResults,
			Timeout:    time.Duration(timeoutSeconds) * time.Second,
			Retries:    retries,
		},
		Selectors: selectors,
		CreatedAt: parseTime(createdAtStr),
		UpdatedAt: parseTime(updatedAtStr),
	}

	if enabledAtStr.Valid {
		t := parseTime(enabledAtStr.String)
		source.EnabledAt = &t
	}

	return source, nil
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
