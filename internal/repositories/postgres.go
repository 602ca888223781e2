package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/valentine/backend/internal/db"
	"github.com/valentine/backend/internal/models"
)

// PostgresValentineRepository provides PostgreSQL-backed persistence for
// valentines and their media index rows.
type PostgresValentineRepository struct {
	pool db.Pool
}

// NewPostgresValentineRepository constructs a repository backed by PostgreSQL.
func NewPostgresValentineRepository(pool db.Pool) *PostgresValentineRepository {
	return &PostgresValentineRepository{pool: pool}
}

// CreateValentine inserts the parent row and returns the store-assigned id
// and creation timestamp. A duplicate code maps to ErrConflict so the caller
// can retry with a fresh allocation.
func (r *PostgresValentineRepository) CreateValentine(ctx context.Context, v models.Valentine) (string, time.Time, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var specialDate []byte
	if v.SpecialDate != nil {
		specialDate, err = json.Marshal(v.SpecialDate)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("encode special date: %w", err)
		}
	}

	id := uuid.NewString()
	row := conn.QueryRow(ctx, `
        INSERT INTO valentines (id, code, recipient_name, creator_name, favorite_color, music_enabled, special_date, memories, reasons, proposal_type)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at
    `, id, v.Code, v.RecipientName, nullIfEmpty(v.CreatorName), v.FavoriteColor, v.MusicEnabled, specialDate, nullIfEmpty(v.Memories), v.Reasons, v.ProposalType)

	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", time.Time{}, ErrConflict
		}
		return "", time.Time{}, fmt.Errorf("insert valentine: %w", err)
	}

	return id, createdAt.UTC(), nil
}

// CreateMediaItem inserts one media index row referencing its parent.
func (r *PostgresValentineRepository) CreateMediaItem(ctx context.Context, item models.MediaItem) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO valentine_media (id, valentine_id, media_type, file_path, file_url, display_order)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, uuid.NewString(), item.ValentineID, item.Kind, item.Path, item.URL, item.Order)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert media item: %w", err)
	}

	return nil
}

// FindByCode fetches the parent row by exact code match. Media fields are
// left unpopulated; ListMediaByValentine supplies them.
func (r *PostgresValentineRepository) FindByCode(ctx context.Context, code string) (models.Valentine, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Valentine{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, code, recipient_name, creator_name, favorite_color, music_enabled, special_date, memories, reasons, proposal_type, created_at
        FROM valentines
        WHERE code = $1
    `, code)

	var (
		v            models.Valentine
		creatorName  sql.NullString
		specialDate  []byte
		memories     sql.NullString
		proposalType sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Code, &v.RecipientName, &creatorName, &v.FavoriteColor, &v.MusicEnabled, &specialDate, &memories, &v.Reasons, &proposalType, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Valentine{}, ErrNotFound
		}
		return models.Valentine{}, fmt.Errorf("select valentine by code: %w", err)
	}

	v.CreatorName = creatorName.String
	v.Memories = memories.String
	v.ProposalType = proposalType.String
	v.CreatedAt = v.CreatedAt.UTC()

	if len(specialDate) > 0 {
		var sd models.SpecialDate
		if err := json.Unmarshal(specialDate, &sd); err != nil {
			return models.Valentine{}, fmt.Errorf("decode special date: %w", err)
		}
		v.SpecialDate = &sd
	}

	return v, nil
}

// ListMediaByValentine returns all media rows for a valentine ordered by
// display order ascending.
func (r *PostgresValentineRepository) ListMediaByValentine(ctx context.Context, valentineID string) ([]models.MediaItem, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, valentine_id, media_type, file_path, file_url, display_order, created_at
        FROM valentine_media
        WHERE valentine_id = $1
        ORDER BY display_order ASC, created_at ASC
    `, valentineID)
	if err != nil {
		return nil, fmt.Errorf("query valentine media: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var (
			item models.MediaItem
			url  sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.ValentineID, &item.Kind, &item.Path, &url, &item.Order, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media item: %w", err)
		}
		item.URL = url.String
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate valentine media: %w", err)
	}

	return items, nil
}

// ListSummaries returns the newest-first creator overview with media counts.
func (r *PostgresValentineRepository) ListSummaries(ctx context.Context) ([]models.ValentineSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, code, recipient_name, creator_name, created_at, photo_count, video_count, voice_note_count
        FROM valentine_summary
        ORDER BY created_at DESC
        LIMIT 100
    `)
	if err != nil {
		return nil, fmt.Errorf("query valentine summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.ValentineSummary
	for rows.Next() {
		var (
			s           models.ValentineSummary
			creatorName sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Code, &s.RecipientName, &creatorName, &s.CreatedAt, &s.PhotoCount, &s.VideoCount, &s.VoiceNoteCount); err != nil {
			return nil, fmt.Errorf("scan valentine summary: %w", err)
		}
		s.CreatorName = creatorName.String
		s.CreatedAt = s.CreatedAt.UTC()
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate valentine summaries: %w", err)
	}

	return summaries, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ ValentineRepository = (*PostgresValentineRepository)(nil)
