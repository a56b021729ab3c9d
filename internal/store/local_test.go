package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	return NewLocal(filepath.Join(t.TempDir(), "data", "fallback_resources.json"))
}

func TestLocalEmptyStore(t *testing.T) {
	s := newTestLocal(t)

	records, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, records, "missing file reads as an empty store")

	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalCreateAssignsSequentialIDs(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	first, err := s.Create(ctx, NewResource{Name: "Cozy Cottage in Watamu"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := s.Create(ctx, NewResource{Name: "Kilifi Waterfront House"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, second.CreatedAt.IsZero())
}

func TestLocalListNewestFirst(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	_, err := s.Create(ctx, NewResource{Name: "older"})
	require.NoError(t, err)
	_, err = s.Create(ctx, NewResource{Name: "newer"})
	require.NoError(t, err)

	records, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].Name)
	assert.Equal(t, "older", records[1].Name)
}

func TestLocalCreateRoundTrip(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	price := 4500.0

	created, err := s.Create(ctx, NewResource{
		Name:        "Beachfront Villa in Diani",
		Description: "Steps from the sand",
		Price:       &price,
		Location:    "Diani",
		Tags:        []string{"Beachfront"},
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beachfront Villa in Diani", got.Name)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Diani", *got.Location)
	assert.JSONEq(t, `["Beachfront"]`, string(got.Tags))
	assert.JSONEq(t, `4500`, string(got.Price))
}

func TestLocalCreateEmptyCollectionsStayArrays(t *testing.T) {
	s := newTestLocal(t)

	created, err := s.Create(context.Background(), NewResource{Name: "bare"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(created.Tags))
	assert.JSONEq(t, `[]`, string(created.Images))
}

func TestLocalReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.json")
	legacy := `{"resources":[{"id":5,"name":"Old Listing","price":"1800","tags":"Walkable, Ferry-free"}]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := NewLocal(path)
	got, err := s.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Old Listing", got.Name)
	assert.Equal(t, `"1800"`, string(got.Price))
	assert.Equal(t, `"Walkable, Ferry-free"`, string(got.Tags))

	// New ids continue above the legacy high-water mark.
	created, err := s.Create(context.Background(), NewResource{Name: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)
}

func TestLocalCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewLocal(path)
	records, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
