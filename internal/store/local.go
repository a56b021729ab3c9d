package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pwanystay/pwanystay-api/internal/models"
)

// Local is the file-backed fallback store. It keeps the service able to
// accept reads and new listings with zero database availability, and no
// more: no filtering, no owner scoping, no update/delete. Id assignment is
// max(existing)+1 computed fresh on every create with no file locking, so
// concurrent writers can race. That is an accepted limitation of this
// degraded mode, not something callers should rely on being fixed.
type Local struct {
	path string
}

// NewLocal creates a fallback store backed by the JSON file at path.
func NewLocal(path string) *Local {
	return &Local{path: path}
}

type localFile struct {
	Resources []models.Record `json:"resources"`
}

// List returns every stored record, most recently created first.
func (s *Local) List(_ context.Context, _ Filter) ([]models.Record, error) {
	file := s.read()
	out := make([]models.Record, 0, len(file.Resources))
	for i := len(file.Resources) - 1; i >= 0; i-- {
		out = append(out, file.Resources[i])
	}
	return out, nil
}

// Get returns the record with the given id or ErrNotFound.
func (s *Local) Get(_ context.Context, id int64) (*models.Record, error) {
	file := s.read()
	for _, r := range file.Resources {
		if r.ID == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a record. Owner, status, type and bedrooms are not modeled
// here and are dropped.
func (s *Local) Create(_ context.Context, n NewResource) (*models.Record, error) {
	file := s.read()

	var nextID int64 = 1
	for _, r := range file.Resources {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}

	rec := models.Record{
		ID:        nextID,
		Name:      n.Name,
		Tags:      mustJSON(emptyIfNil(n.Tags)),
		Images:    mustJSON(emptyIfNil(n.Images)),
		CreatedAt: time.Now().UTC(),
	}
	if n.Description != "" {
		rec.Description = &n.Description
	}
	if n.Price != nil {
		rec.Price = mustJSON(*n.Price)
	}
	if n.Image != "" {
		rec.Image = &n.Image
	}
	if n.Location != "" {
		rec.Location = &n.Location
	}

	file.Resources = append(file.Resources, rec)
	if err := s.write(file); err != nil {
		return nil, err
	}
	return &rec, nil
}

// read loads the backing file, treating any problem as an empty store.
func (s *Local) read() localFile {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return localFile{}
	}
	var file localFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return localFile{}
	}
	return file
}

func (s *Local) write(file localFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

func mustJSON(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
