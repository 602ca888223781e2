package valentine

import (
	"strings"

	"github.com/valentine/backend/internal/models"
)

// MaxPhotos caps the number of photos a single valentine may carry.
const MaxPhotos = 8

// Draft is the complete creator-supplied input to one Assemble call, captured
// before a code or store ids exist.
type Draft struct {
	RecipientName string
	CreatorName   string
	FavoriteColor string
	MusicEnabled  bool
	SpecialDate   *models.SpecialDate
	Memories      string
	Reasons       []string
	ProposalType  string
	Photos        []PhotoInput
	Video         *MediaInput
	VoiceNote     *MediaInput
}

// PhotoInput pairs a photo blob with the stable identifier the client assigned
// while building the selection.
type PhotoInput struct {
	ID   string
	Data []byte
}

// MediaInput is a raw media blob plus the MIME type it was captured with.
type MediaInput struct {
	Data        []byte
	ContentType string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.RecipientName) == "" {
		return ErrRecipientRequired
	}
	if len(d.Photos) > MaxPhotos {
		return ErrTooManyPhotos
	}
	return nil
}

// normalizedReasons drops blank entries and falls back to the default list
// when nothing usable remains.
func normalizedReasons(reasons []string) []string {
	var out []string
	for _, r := range reasons {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultReasons...)
	}
	return out
}

func normalizedProposalType(pt string) string {
	if pt == models.ProposalTypeWishing {
		return models.ProposalTypeWishing
	}
	return models.ProposalTypeAsking
}
