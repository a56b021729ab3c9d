package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pwanystay/pwanystay-api/internal/models"
)

// Postgres is the primary store client. It executes parameterized queries
// and surfaces errors promptly; retry and fallback policy live in the
// resilient wrapper, not here.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store over the shared connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// List returns active resources matching the filter, newest first. All
// filter values are bound parameters.
func (s *Postgres) List(ctx context.Context, f Filter) ([]models.Record, error) {
	query := `SELECT id, name, description, price, image, location, tags, images, bedrooms, type, status, created_at
		FROM resources WHERE status = 'active'`
	var params []any

	if f.Town != "" && f.Town != "All" {
		params = append(params, f.Town)
		query += fmt.Sprintf(" AND location = $%d", len(params))
	}
	if f.Type != "" && f.Type != "All" {
		params = append(params, f.Type)
		query += fmt.Sprintf(" AND type = $%d", len(params))
	}
	if f.Bedrooms != "" && f.Bedrooms != "Any" {
		if f.Bedrooms == "4+" {
			params = append(params, 4)
			query += fmt.Sprintf(" AND bedrooms >= $%d", len(params))
		} else if beds, err := strconv.Atoi(f.Bedrooms); err == nil {
			params = append(params, beds)
			query += fmt.Sprintf(" AND bedrooms = $%d", len(params))
		}
	}
	if min, max, ok := f.PriceRange(); ok {
		params = append(params, min, max)
		query += fmt.Sprintf(" AND price BETWEEN $%d AND $%d", len(params)-1, len(params))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		params = append(params, "%"+search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR location ILIKE $%d)", len(params), len(params))
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var rec models.Record
		var price *float64
		var tags, images []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &price, &rec.Image,
			&rec.Location, &tags, &images, &rec.Bedrooms, &rec.Type, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Price = priceRaw(price)
		rec.Tags = tags
		rec.Images = images
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns a single resource or ErrNotFound.
func (s *Postgres) Get(ctx context.Context, id int64) (*models.Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, name, description, price, image, location, tags, images, created_at
		FROM resources WHERE id = $1`, id)
	return scanRecord(row)
}

// Create inserts a resource and returns the stored row.
func (s *Postgres) Create(ctx context.Context, n NewResource) (*models.Record, error) {
	row := s.pool.QueryRow(ctx, `INSERT INTO resources (name, description, price, image, location, tags, images, bedrooms, type, user_id)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9, $10)
		RETURNING id, name, description, price, image, location, tags, images, created_at`,
		n.Name, nullable(n.Description), n.Price, nullable(n.Image), nullable(n.Location),
		jsonbParam(n.Tags), jsonbParam(n.Images), n.Bedrooms, n.Type, n.UserID)
	return scanRecord(row)
}

// ListByOwner returns all of one user's resources, newest id first.
func (s *Postgres) ListByOwner(ctx context.Context, userID int64) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, price, image, location, tags, images, created_at
		FROM resources WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Update rewrites a resource scoped by both id and owner. ErrNotFound means
// no row matched both.
func (s *Postgres) Update(ctx context.Context, id, userID int64, n NewResource) (*models.Record, error) {
	row := s.pool.QueryRow(ctx, `UPDATE resources
		SET name = $1, description = $2, price = $3, image = $4, location = $5, tags = $6::jsonb, images = $7::jsonb
		WHERE id = $8 AND user_id = $9
		RETURNING id, name, description, price, image, location, tags, images, created_at`,
		n.Name, nullable(n.Description), n.Price, nullable(n.Image), nullable(n.Location),
		jsonbParam(n.Tags), jsonbParam(n.Images), id, userID)
	return scanRecord(row)
}

// Delete removes a resource scoped by both id and owner.
func (s *Postgres) Delete(ctx context.Context, id, userID int64) error {
	var deleted int64
	err := s.pool.QueryRow(ctx, `DELETE FROM resources WHERE id = $1 AND user_id = $2 RETURNING id`,
		id, userID).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ListAll returns every resource regardless of status or owner, newest id
// first. Admin surface only.
func (s *Postgres) ListAll(ctx context.Context) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, price, image, location, tags, images, created_at
		FROM resources ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// AdminUpdate rewrites a resource without owner scoping.
func (s *Postgres) AdminUpdate(ctx context.Context, id int64, n NewResource) (*models.Record, error) {
	row := s.pool.QueryRow(ctx, `UPDATE resources
		SET name = $1, description = $2, price = $3, image = $4, location = $5, tags = $6::jsonb, images = $7::jsonb
		WHERE id = $8
		RETURNING id, name, description, price, image, location, tags, images, created_at`,
		n.Name, nullable(n.Description), n.Price, nullable(n.Image), nullable(n.Location),
		jsonbParam(n.Tags), jsonbParam(n.Images), id)
	return scanRecord(row)
}

// AdminDelete removes a resource without owner scoping.
func (s *Postgres) AdminDelete(ctx context.Context, id int64) error {
	var deleted int64
	err := s.pool.QueryRow(ctx, `DELETE FROM resources WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// scanRecord scans the nine-column row shape shared by get/create/update.
func scanRecord(row pgx.Row) (*models.Record, error) {
	var rec models.Record
	var price *float64
	var tags, images []byte
	err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &price, &rec.Image,
		&rec.Location, &tags, &images, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Price = priceRaw(price)
	rec.Tags = tags
	rec.Images = images
	return &rec, nil
}

// priceRaw re-wraps a scanned numeric so records keep one raw shape across
// both stores.
func priceRaw(p *float64) json.RawMessage {
	if p == nil {
		return nil
	}
	return json.RawMessage(strconv.AppendFloat(nil, *p, 'f', -1, 64))
}

// jsonbParam renders a string slice as JSON text for a $n::jsonb parameter,
// NULL when empty.
func jsonbParam(list []string) *string {
	if len(list) == 0 {
		return nil
	}
	b, _ := json.Marshal(list)
	s := string(b)
	return &s
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
