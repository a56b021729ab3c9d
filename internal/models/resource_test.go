package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMapResourceFullRecord(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{
		ID:          7,
		Name:        "Beachfront Villa in Diani",
		Description: strPtr("Steps from the sand"),
		Price:       json.RawMessage(`4500`),
		Image:       strPtr("https://example.com/villa.webp"),
		Location:    strPtr("Diani"),
		Tags:        json.RawMessage(`["Beachfront", "Ferry-free"]`),
		Images:      json.RawMessage(`["https://example.com/a.webp"]`),
		CreatedAt:   created,
	}

	out := MapResource(rec)

	require.NotNil(t, out.Name)
	assert.Equal(t, "Beachfront Villa in Diani", *out.Name)
	require.NotNil(t, out.Title)
	assert.Equal(t, "Beachfront Villa in Diani", *out.Title, "title falls back to name")
	require.NotNil(t, out.Price)
	assert.Equal(t, 4500.0, *out.Price)
	assert.Equal(t, "Diani", out.Location)
	require.NotNil(t, out.Tags)
	assert.Equal(t, []string{"Beachfront", "Ferry-free"}, *out.Tags)
	assert.Equal(t, []string{"https://example.com/a.webp"}, out.Images)
	require.NotNil(t, out.CreatedAt)
	assert.True(t, out.CreatedAt.Equal(created))
}

func TestMapResourceSparseRecord(t *testing.T) {
	out := MapResource(Record{ID: 3})

	assert.Equal(t, int64(3), out.ID)
	assert.Nil(t, out.Name)
	assert.Nil(t, out.Title)
	assert.Nil(t, out.Description)
	assert.Nil(t, out.CreatedAt)
	assert.Nil(t, out.Price)
	assert.Nil(t, out.Tags)
	assert.Empty(t, out.Images)
	assert.Empty(t, out.Location)

	// Sparse records still serialize the five stable fields as nulls and
	// omit everything optional.
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":null,"title":null,"description":null,"created_at":null}`, string(raw))
}

func TestMapResourceLegacyShapes(t *testing.T) {
	rec := Record{
		ID:     11,
		Name:   "Old Town Apartment",
		Title:  "Mombasa Old Town Apartment",
		Price:  json.RawMessage(`"2200"`),
		Tags:   json.RawMessage(`"Ferry-free, Walkable"`),
		Images: json.RawMessage(`"https://example.com/one.webp"`),
	}

	out := MapResource(rec)

	require.NotNil(t, out.Title)
	assert.Equal(t, "Mombasa Old Town Apartment", *out.Title)
	require.NotNil(t, out.Price)
	assert.Equal(t, 2200.0, *out.Price)
	require.NotNil(t, out.Tags)
	assert.Equal(t, []string{"Ferry-free", "Walkable"}, *out.Tags)
	assert.Equal(t, []string{"https://example.com/one.webp"}, out.Images)
}

func TestMapResourceEmptyTagsArrayStays(t *testing.T) {
	out := MapResource(Record{ID: 1, Name: "x", Tags: json.RawMessage(`[]`)})

	require.NotNil(t, out.Tags, "a stored empty tag list is a real value")
	assert.Empty(t, *out.Tags)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tags":[]`)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`4500`, 4500, true},
		{`2800.5`, 2800.5, true},
		{`"3500"`, 3500, true},
		{`" 2200 "`, 2200, true},
		{`"not a price"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`{"amount":1}`, 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePrice(json.RawMessage(tc.raw))
		assert.Equal(t, tc.ok, ok, "raw=%s", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, "raw=%s", tc.raw)
		}
	}

	_, ok := ParsePrice(nil)
	assert.False(t, ok)
}

func TestParseTags(t *testing.T) {
	tags, ok := ParseTags(json.RawMessage(`["Beachfront"]`))
	require.True(t, ok)
	assert.Equal(t, []string{"Beachfront"}, tags)

	tags, ok = ParseTags(json.RawMessage(`"Beachfront, Ferry-free , "`))
	require.True(t, ok)
	assert.Equal(t, []string{"Beachfront", "Ferry-free"}, tags)

	_, ok = ParseTags(json.RawMessage(`""`))
	assert.False(t, ok)

	_, ok = ParseTags(json.RawMessage(`42`))
	assert.False(t, ok)

	_, ok = ParseTags(nil)
	assert.False(t, ok)
}

func TestParseImages(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseImages(json.RawMessage(`["a","b"]`)))

	// A stored string holding serialized JSON is unwrapped.
	assert.Equal(t, []string{"a"}, ParseImages(json.RawMessage(`"[\"a\"]"`)))

	// A plain URL string becomes a one-element list.
	assert.Equal(t, []string{"https://x/y.webp"}, ParseImages(json.RawMessage(`"https://x/y.webp"`)))

	assert.Nil(t, ParseImages(nil))
	assert.Nil(t, ParseImages(json.RawMessage(`7`)))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"Beachfront", "Ferry-free"}, SplitTags(" Beachfront , Ferry-free ,"))
	assert.Empty(t, SplitTags(" , ,"))
}
