package handlers

import (
	"net/http"

	"github.com/valentine/backend/internal/valentine"
)

// PresetHandler serves the static creation-form catalog.
type PresetHandler struct{}

// Handle implements GET /api/v1/presets.
func (PresetHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, presetsResponse{
		Reasons:      valentine.DefaultReasons,
		Colors:       valentine.PresetColors,
		DateContexts: valentine.DateContexts,
	})
}

type presetsResponse struct {
	Reasons      []string                `json:"reasons"`
	Colors       []valentine.PresetColor `json:"colors"`
	DateContexts []string                `json:"dateContexts"`
}
