package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pwanystay/pwanystay-api/internal/models"
)

func intPtr(i int) *int     { return &i }
func sPtr(s string) *string { return &s }

func TestFilterMatchTown(t *testing.T) {
	rec := models.Record{Name: "Villa", Location: sPtr("Diani")}

	assert.True(t, Filter{}.Match(rec))
	assert.True(t, Filter{Town: "All"}.Match(rec))
	assert.True(t, Filter{Town: "Diani"}.Match(rec))
	assert.False(t, Filter{Town: "Watamu"}.Match(rec))

	// Records missing a filtered field do not match.
	assert.False(t, Filter{Town: "Diani"}.Match(models.Record{Name: "Villa"}))
}

func TestFilterMatchBedrooms(t *testing.T) {
	two := models.Record{Name: "Flat", Bedrooms: intPtr(2)}
	five := models.Record{Name: "House", Bedrooms: intPtr(5)}

	assert.True(t, Filter{Bedrooms: "Any"}.Match(two))
	assert.True(t, Filter{Bedrooms: "2"}.Match(two))
	assert.False(t, Filter{Bedrooms: "3"}.Match(two))

	assert.True(t, Filter{Bedrooms: "4+"}.Match(five))
	assert.False(t, Filter{Bedrooms: "4+"}.Match(two))
	assert.False(t, Filter{Bedrooms: "4+"}.Match(models.Record{Name: "Bare"}))

	// Unparseable bedroom filters are ignored rather than excluding rows.
	assert.True(t, Filter{Bedrooms: "lots"}.Match(two))
}

func TestFilterMatchPriceRange(t *testing.T) {
	rec := models.Record{Name: "Villa", Price: json.RawMessage(`4500`)}

	assert.True(t, Filter{MinPrice: "4000", MaxPrice: "5000"}.Match(rec))
	assert.False(t, Filter{MinPrice: "1000", MaxPrice: "2000"}.Match(rec))

	// Bounds only apply when both are present and numeric.
	assert.True(t, Filter{MinPrice: "9000"}.Match(rec))
	assert.True(t, Filter{MinPrice: "abc", MaxPrice: "5000"}.Match(rec))

	// A record without a usable price cannot satisfy an active range.
	assert.False(t, Filter{MinPrice: "0", MaxPrice: "9000"}.Match(models.Record{Name: "Bare"}))

	// Quoted legacy prices still participate.
	legacy := models.Record{Name: "Old", Price: json.RawMessage(`"2200"`)}
	assert.True(t, Filter{MinPrice: "2000", MaxPrice: "3000"}.Match(legacy))
}

func TestFilterMatchSearch(t *testing.T) {
	rec := models.Record{Name: "Mombasa Old Town Apartment", Location: sPtr("Mombasa")}

	assert.True(t, Filter{Search: "old town"}.Match(rec))
	assert.True(t, Filter{Search: "MOMBASA"}.Match(rec))
	assert.True(t, Filter{Search: "   "}.Match(rec))
	assert.False(t, Filter{Search: "kilifi"}.Match(rec))
}

func TestPriceRange(t *testing.T) {
	_, _, ok := Filter{MinPrice: "100"}.PriceRange()
	assert.False(t, ok)

	min, max, ok := Filter{MinPrice: "100", MaxPrice: "200"}.PriceRange()
	assert.True(t, ok)
	assert.Equal(t, 100.0, min)
	assert.Equal(t, 200.0, max)
}
