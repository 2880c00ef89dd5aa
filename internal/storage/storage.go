package storage

import (
	"context"
	"time"

	"github.com/Epistemic-Technology/pdf-tools/models"
)

// ListOptions filters catalog listings. Zero values match everything.
type ListOptions struct {
	Operation string
	// OlderThan keeps only entries created strictly before this instant
	OlderThan time.Time
	Limit     int
}

// Catalog records staged outputs so the external cleanup sweep can find
// them by age without walking the staging directory.
type Catalog interface {
	// Record adds the given files in a single transaction
	Record(ctx context.Context, files ...models.StagedFile) error

	// Get retrieves one entry by name
	Get(ctx context.Context, name string) (*models.StagedFile, error)

	// List returns entries oldest first
	List(ctx context.Context, opts ListOptions) ([]models.StagedFile, error)

	// Delete removes entries by name; unknown names are ignored
	Delete(ctx context.Context, names ...string) error

	// Close closes the database connection
	Close() error
}
