package valentine

import (
	"context"
	"fmt"

	"github.com/valentine/backend/internal/models"
)

// StoreResolver redeems access codes directly against the record store.
// A wrong code surfaces as repositories.ErrNotFound; any other failure is a
// store error. The resolver performs no retries of its own.
type StoreResolver struct {
	records RecordStore
}

// NewResolver constructs a resolver over the provided store.
func NewResolver(records RecordStore) *StoreResolver {
	return &StoreResolver{records: records}
}

// Resolve normalizes the code, fetches the parent row and its media rows, and
// reconstitutes the full valentine. Media rows arrive ordered by display
// order, so photos keep the creator's selection order.
func (r *StoreResolver) Resolve(ctx context.Context, code string) (models.Valentine, error) {
	record, err := r.records.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		return models.Valentine{}, err
	}

	media, err := r.records.ListMediaByValentine(ctx, record.ID)
	if err != nil {
		return models.Valentine{}, fmt.Errorf("list media for %s: %w", record.ID, err)
	}

	for _, item := range media {
		if item.URL == "" {
			continue
		}
		switch item.Kind {
		case models.MediaKindPhoto:
			record.Photos = append(record.Photos, item.URL)
		case models.MediaKindVideo:
			if record.VideoURL == "" {
				record.VideoURL = item.URL
			}
		case models.MediaKindVoiceNote:
			if record.VoiceNoteURL == "" {
				record.VoiceNoteURL = item.URL
			}
		}
	}

	// Rows written before these defaults existed may miss them; write time
	// guarantees both for anything new.
	if len(record.Reasons) == 0 {
		record.Reasons = append(record.Reasons, DefaultReasons...)
	}
	if record.ProposalType == "" {
		record.ProposalType = models.ProposalTypeAsking
	}

	return record, nil
}

var _ Resolver = (*StoreResolver)(nil)
