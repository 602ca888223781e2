package valentine

import (
	"context"
	"io"
	"time"

	"github.com/valentine/backend/internal/models"
)

// RecordStore persists valentines and their media index rows. Implementations
// report missing rows with repositories.ErrNotFound and uniqueness violations
// with repositories.ErrConflict.
type RecordStore interface {
	// CreateValentine inserts the parent row and returns the store-assigned
	// id and creation timestamp.
	CreateValentine(ctx context.Context, v models.Valentine) (string, time.Time, error)
	CreateMediaItem(ctx context.Context, item models.MediaItem) error
	// FindByCode returns the parent row without media fields populated.
	FindByCode(ctx context.Context, code string) (models.Valentine, error)
	// ListMediaByValentine returns media rows ordered by display order ascending.
	ListMediaByValentine(ctx context.Context, valentineID string) ([]models.MediaItem, error)
}

// MediaStorage uploads media blobs to durable object storage. Paths are opaque
// strings chosen by the caller; overwrites are not expected.
type MediaStorage interface {
	Save(ctx context.Context, path, contentType string, r io.Reader) error
	PublicURL(path string) string
}

// Resolver converts an access code into a full valentine.
type Resolver interface {
	Resolve(ctx context.Context, code string) (models.Valentine, error)
}
