package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/pwanystay/pwanystay-api/internal/models"
)

// ErrNotFound signals that no record matched the id (and owner, for the
// owner-scoped operations).
var ErrNotFound = errors.New("resource not found")

// ResourceStore is the querying contract shared by the primary store and the
// local fallback store.
type ResourceStore interface {
	List(ctx context.Context, f Filter) ([]models.Record, error)
	Get(ctx context.Context, id int64) (*models.Record, error)
	Create(ctx context.Context, n NewResource) (*models.Record, error)
}

// OwnerStore holds the operations only the primary store can honor: the
// fallback store has no owner concept and no update/delete.
type OwnerStore interface {
	ListByOwner(ctx context.Context, userID int64) ([]models.Record, error)
	Update(ctx context.Context, id, userID int64, n NewResource) (*models.Record, error)
	Delete(ctx context.Context, id, userID int64) error
}

// PrimaryStore is what the resilient wrapper expects of the backend of
// record.
type PrimaryStore interface {
	ResourceStore
	OwnerStore
}

// NewResource carries validated fields for a create or update.
type NewResource struct {
	Name        string
	Description string
	Price       *float64
	Image       string
	Location    string
	Tags        []string
	Images      []string
	Bedrooms    int
	Type        string
	UserID      *int64
}

// Filter holds raw listing query parameters. Values arrive as the client
// sent them; "All"/"Any"/empty mean no filter, bedrooms accepts the "4+"
// sentinel, and the price bounds only apply when both parse.
type Filter struct {
	Town     string
	Type     string
	Bedrooms string
	MinPrice string
	MaxPrice string
	Search   string
}

// PriceRange reports the inclusive bounds, valid only when both were given
// and numeric.
func (f Filter) PriceRange() (min, max float64, ok bool) {
	if f.MinPrice == "" || f.MaxPrice == "" {
		return 0, 0, false
	}
	min, errMin := strconv.ParseFloat(f.MinPrice, 64)
	max, errMax := strconv.ParseFloat(f.MaxPrice, 64)
	if errMin != nil || errMax != nil {
		return 0, 0, false
	}
	return min, max, true
}

// Match applies the filter to a record in memory. The fallback store cannot
// filter itself, so the access layer runs its rows through this after the
// fact. A record missing a filtered field does not match.
func (f Filter) Match(r models.Record) bool {
	if f.Town != "" && f.Town != "All" {
		if r.Location == nil || *r.Location != f.Town {
			return false
		}
	}
	if f.Type != "" && f.Type != "All" {
		if r.Type == nil || *r.Type != f.Type {
			return false
		}
	}
	if f.Bedrooms != "" && f.Bedrooms != "Any" {
		if f.Bedrooms == "4+" {
			if r.Bedrooms == nil || *r.Bedrooms < 4 {
				return false
			}
		} else if beds, err := strconv.Atoi(f.Bedrooms); err == nil {
			if r.Bedrooms == nil || *r.Bedrooms != beds {
				return false
			}
		}
	}
	if min, max, ok := f.PriceRange(); ok {
		price, valid := models.ParsePrice(r.Price)
		if !valid || price < min || price > max {
			return false
		}
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		needle := strings.ToLower(search)
		name := strings.ToLower(r.Name)
		location := ""
		if r.Location != nil {
			location = strings.ToLower(*r.Location)
		}
		if !strings.Contains(name, needle) && !strings.Contains(location, needle) {
			return false
		}
	}
	return true
}
