package sources

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "sources.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// TestCreateSource verifies a source round-trips through the store
func TestCreateSource(t *testing.T) {
	store := newTestStore(t)

	created, err := store.CreateSource(BBC(), BBCSelectors(), true)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.IsEnabled())

	got, err := store.GetSource(created.SourceID)
	require.NoError(t, err)
	assert.Equal(t, "BBC News", got.Descriptor.Name)
	assert.Equal(t, "https://www.bbc.com", got.Descriptor.BaseURL)
	assert.Equal(t, BBCSelectors(), got.Selectors)
	assert.True(t, got.IsEnabled())
}

// TestCreateSource_FillsDefaults verifies zero limits are stored with
// defaults applied
func TestCreateSource_FillsDefaults(t *testing.T) {
	store := newTestStore(t)

	desc := Descriptor{Name: "X", BaseURL: "https://x.com", SearchPath: "/search"}
	created, err := store.CreateSource(desc, SelectorSet{Results: []string{"article"}}, false)
	require.NoError(t, err)

	got, err := store.GetSource(created.SourceID)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, got.Descriptor.MaxResults)
	assert.Equal(t, DefaultTimeout, got.Descriptor.Timeout)
	assert.Equal(t, DefaultRetries, got.Descriptor.Retries)
	assert.False(t, got.IsEnabled())
}

// TestCreateSource_DuplicateName verifies the unique-name constraint
func TestCreateSource_DuplicateName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateSource(BBC(), BBCSelectors(), true)
	require.NoError(t, err)

	_, err = store.CreateSource(BBC(), BBCSelectors(), true)
	assert.ErrorIs(t, err, ErrDuplicateSource)
}

// TestCreateSource_InvalidDescriptor verifies validation runs before insert
func TestCreateSource_InvalidDescriptor(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateSource(Descriptor{Name: "bad"}, SelectorSet{}, true)
	assert.Error(t, err)
}

// TestGetSourceByName verifies lookup by descriptor name
func TestGetSourceByName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateSource(BBC(), BBCSelectors(), true)
	require.NoError(t, err)

	got, err := store.GetSourceByName("BBC News")
	require.NoError(t, err)
	assert.Equal(t, "BBC News", got.Descriptor.Name)

	_, err = store.GetSourceByName("nope")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

// TestListEnabledSources verifies disabled sources are filtered out
func TestListEnabledSources(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateSource(BBC(), BBCSelectors(), true)
	require.NoError(t, err)
	_, err = store.CreateSource(
		Descriptor{Name: "Quiet Site", BaseURL: "https://quiet.example", SearchPath: "/s"},
		SelectorSet{Results: []string{"article"}},
		false,
	)
	require.NoError(t, err)

	all, err := store.ListSources()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := store.ListEnabledSources()
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "BBC News", enabled[0].Descriptor.Name)
}

// TestSetEnabled verifies enable/disable toggling
func TestSetEnabled(t *testing.T) {
	store := newTestStore(t)

	created, err := store.CreateSource(BBC(), BBCSelectors(), true)
	require.NoError(t, err)

	require.NoError(t, store.SetEnabled(created.SourceID, false))
	got, err := store.GetSource(created.SourceID)
	require.NoError(t, err)
	assert.False(t, got.IsEnabled())

	require.NoError(t, store.SetEnabled(created.SourceID, true))
	got, err = store.GetSource(created.SourceID)
	require.NoError(t, err)
	assert.True(t, got.IsEnabled())
}

// TestDeleteSource verifies deletion and the not-found error
func TestDeleteSource(t *testing.T) {
	store := newTestStore(t)

	created, err := store.CreateSource(BBC(), BBCSelectors(), true)
	require.NoError(t, err)

	require.NoError(t, store.DeleteSource(created.SourceID))

	_, err = store.GetSource(created.SourceID)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	assert.ErrorIs(t, store.DeleteSource(uuid.New()), ErrSourceNotFound)
}
