package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pwanystay/pwanystay-api/internal/models"
)

// Resilient presents one querying contract while hiding which backend
// served the request. List, Get and Create race the primary store against a
// fixed timeout and silently fall back to the local store when it loses;
// whichever settles first wins, and a primary result arriving after the
// timeout is discarded, not reconciled. The owner-scoped operations never
// fall back since the local store cannot express ownership; they surface
// the failure instead.
type Resilient struct {
	primary  PrimaryStore
	fallback ResourceStore
	timeout  time.Duration
}

// DefaultTimeout bounds primary-store attempts on the read/create path.
const DefaultTimeout = 4 * time.Second

// NewResilient wraps a primary and a fallback store. A non-positive timeout
// uses DefaultTimeout.
func NewResilient(primary PrimaryStore, fallback ResourceStore, timeout time.Duration) *Resilient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resilient{primary: primary, fallback: fallback, timeout: timeout}
}

// List queries the primary store, falling back on error or timeout. The
// fallback store cannot filter, so its rows are filtered here after the
// fact. The second return value reports whether the fallback served the
// call.
func (r *Resilient) List(ctx context.Context, f Filter) ([]models.Record, bool, error) {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.primary.List(pctx, f)
	if err == nil {
		return records, false, nil
	}
	log.Printf("list: primary store failed or timed out, using fallback: %v", err)

	records, err = r.fallback.List(ctx, f)
	if err != nil {
		return nil, true, err
	}
	filtered := records[:0]
	for _, rec := range records {
		if f.Match(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, true, nil
}

// Get fetches one record, falling back on error or timeout. A not-found
// from the primary store is a real answer and does not trigger fallback.
func (r *Resilient) Get(ctx context.Context, id int64) (*models.Record, bool, error) {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := r.primary.Get(pctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		return rec, false, err
	}
	log.Printf("get: primary store failed or timed out, using fallback: %v", err)

	rec, err = r.fallback.Get(ctx, id)
	return rec, true, err
}

// Create writes to the primary store, persisting to the fallback store when
// that fails. Owner id, status, type and bedrooms are silently dropped on
// the fallback path since it does not model them.
func (r *Resilient) Create(ctx context.Context, n NewResource) (*models.Record, bool, error) {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := r.primary.Create(pctx, n)
	if err == nil {
		return rec, false, nil
	}
	log.Printf("create: primary store failed or timed out, using fallback: %v", err)

	rec, err = r.fallback.Create(ctx, n)
	return rec, true, err
}

// ListByOwner is primary-only; an unreachable primary store is surfaced.
func (r *Resilient) ListByOwner(ctx context.Context, userID int64) ([]models.Record, error) {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.primary.ListByOwner(pctx, userID)
}

// Update is primary-only and scoped to the owning user.
func (r *Resilient) Update(ctx context.Context, id, userID int64, n NewResource) (*models.Record, error) {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.primary.Update(pctx, id, userID, n)
}

// Delete is primary-only and scoped to the owning user.
func (r *Resilient) Delete(ctx context.Context, id, userID int64) error {
	pctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.primary.Delete(pctx, id, userID)
}
