package models

import "time"

// Valentine is the fully assembled greeting returned to creators after a
// successful save and to recipients on redemption.
type Valentine struct {
	ID            string
	Code          string
	RecipientName string
	CreatorName   string
	FavoriteColor string
	MusicEnabled  bool
	SpecialDate   *SpecialDate
	Memories      string
	Reasons       []string
	ProposalType  string
	Photos        []string
	VideoURL      string
	VoiceNoteURL  string
	CreatedAt     time.Time
}

// SpecialDate pairs a calendar date with the significance the creator gave it.
type SpecialDate struct {
	Date    string `json:"date"`
	Context string `json:"context"`
}

// MediaItem is one stored media blob associated with a valentine.
type MediaItem struct {
	ID          string
	ValentineID string
	Kind        string
	Path        string
	URL         string
	Order       int
	CreatedAt   time.Time
}

const (
	MediaKindPhoto     = "photo"
	MediaKindVideo     = "video"
	MediaKindVoiceNote = "voice_note"
)

const (
	ProposalTypeAsking  = "asking"
	ProposalTypeWishing = "wishing"
)

// ValentineSummary aggregates per-valentine media counts for the creator view.
type ValentineSummary struct {
	ID             string
	Code           string
	RecipientName  string
	CreatorName    string
	CreatedAt      time.Time
	PhotoCount     int
	VideoCount     int
	VoiceNoteCount int
}
