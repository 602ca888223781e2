package repositories

import (
	"context"
	"time"

	"github.com/valentine/backend/internal/models"
)

// ValentineRepository exposes data access for valentines and their media rows.
type ValentineRepository interface {
	CreateValentine(ctx context.Context, v models.Valentine) (string, time.Time, error)
	CreateMediaItem(ctx context.Context, item models.MediaItem) error
	FindByCode(ctx context.Context, code string) (models.Valentine, error)
	ListMediaByValentine(ctx context.Context, valentineID string) ([]models.MediaItem, error)
	ListSummaries(ctx context.Context) ([]models.ValentineSummary, error)
}
