package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/valentine/backend/internal/config"
	"github.com/valentine/backend/internal/db"
	"github.com/valentine/backend/internal/handlers"
	"github.com/valentine/backend/internal/middleware"
	"github.com/valentine/backend/internal/repositories"
	"github.com/valentine/backend/internal/storage"
	"github.com/valentine/backend/internal/valentine"
)

// buildDependencies wires concrete implementations into the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	repo := repositories.NewPostgresValentineRepository(pool)

	media, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	codes := valentine.NewCodeGenerator(repo)
	assembler := valentine.NewAssembler(repo, media, codes, slog.Default())
	resolver := valentine.NewCachingResolver(valentine.NewResolver(repo), cfg.RedemptionCacheTTL)
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst, 10*time.Minute)

	return handlers.Dependencies{
		Assembler:           assembler,
		Resolver:            resolver,
		Summaries:           repo,
		Trimmer:             valentine.SizeCapTrimmer{MaxBytes: cfg.MaxVideoBytes},
		Limiter:             limiter,
		CreatorPasswordHash: cfg.CreatorPasswordHash,
	}, nil
}
