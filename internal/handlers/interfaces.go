package handlers

import (
	"context"

	"github.com/valentine/backend/internal/models"
	"github.com/valentine/backend/internal/valentine"
)

// Assembler runs the save pipeline for a creator draft.
type Assembler interface {
	Assemble(ctx context.Context, draft valentine.Draft, onProgress valentine.ProgressFunc) (models.Valentine, error)
}

// Resolver redeems an access code into a full valentine.
type Resolver interface {
	Resolve(ctx context.Context, code string) (models.Valentine, error)
}

// SummaryStore lists creator-facing valentine summaries.
type SummaryStore interface {
	ListSummaries(ctx context.Context) ([]models.ValentineSummary, error)
}
