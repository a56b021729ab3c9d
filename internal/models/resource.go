package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is a resource as a backing store holds it. The primary store and
// the file-backed fallback store do not agree on field shapes (jsonb arrays
// vs legacy delimited strings, numeric vs quoted prices), so the loose
// fields stay raw until MapResource normalizes them.
type Record struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Image       *string         `json:"image"`
	Location    *string         `json:"location"`
	Tags        json.RawMessage `json:"tags"`
	Images      json.RawMessage `json:"images"`
	Bedrooms    *int            `json:"bedrooms,omitempty"`
	Type        *string         `json:"type,omitempty"`
	Status      *string         `json:"status,omitempty"`
	UserID      *int64          `json:"user_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Resource is the stable API shape of a listing. The first five fields are
// always present (null when the store had nothing); the rest appear only
// when storage held a valid value. Nothing is fabricated.
type Resource struct {
	ID          int64      `json:"id"`
	Name        *string    `json:"name"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	CreatedAt   *time.Time `json:"created_at"`
	Price       *float64   `json:"price,omitempty"`
	Image       string     `json:"image,omitempty"`
	Images      []string   `json:"images,omitempty"`
	Location    string     `json:"location,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
}

// MapResource converts a stored record into the API shape. Raw storage
// shapes must not leak past this function.
func MapResource(r Record) Resource {
	out := Resource{ID: r.ID}

	if r.Name != "" {
		name := r.Name
		out.Name = &name
	}
	// title is what the frontend prefers; fall back to name
	title := r.Title
	if title == "" {
		title = r.Name
	}
	if title != "" {
		out.Title = &title
	}
	if r.Description != nil && *r.Description != "" {
		out.Description = r.Description
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		out.CreatedAt = &created
	}

	if price, ok := ParsePrice(r.Price); ok {
		out.Price = &price
	}
	if r.Image != nil && *r.Image != "" {
		out.Image = *r.Image
	}
	if images := ParseImages(r.Images); len(images) > 0 {
		out.Images = images
	}
	if r.Location != nil && *r.Location != "" {
		out.Location = *r.Location
	}
	if tags, ok := ParseTags(r.Tags); ok {
		out.Tags = &tags
	}

	return out
}

// ParsePrice coerces a raw stored price into a number. Accepts JSON numbers
// and numeric strings; anything else reports false.
func ParsePrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ParseTags normalizes a raw stored tags value into an ordered sequence.
// Arrays pass through unchanged; a comma-delimited string is split and
// trimmed. Reports false when storage held neither.
func ParseTags(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return SplitTags(s), true
	}
	return nil, false
}

// ParseImages normalizes a raw stored images value into an ordered sequence
// of URI strings. A single stored string is parsed as JSON first and wrapped
// as a one-element sequence when that fails.
func ParseImages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		var nested []string
		if err := json.Unmarshal([]byte(s), &nested); err == nil {
			return nested
		}
		return []string{s}
	}
	return nil
}

// SplitTags splits a comma-delimited tag string, trimming whitespace and
// dropping empty entries.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
