// Package speakers serves the static speaker list.
package speakers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/askstage/backend/internal/models"
)

// Repository holds the speaker reference data, loaded once at startup.
// Speakers are owned by configuration; there are no write operations.
type Repository struct {
	list []models.Speaker
}

// NewRepository loads speakers from a JSON file. A missing file yields an
// empty list rather than an error, so the server can run before speakers
// are configured.
func NewRepository(path string) (*Repository, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Repository{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var list []models.Speaker
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Repository{list: list}, nil
}

// List returns all speakers.
func (r *Repository) List() []models.Speaker {
	out := make([]models.Speaker, len(r.list))
	copy(out, r.list)
	return out
}
