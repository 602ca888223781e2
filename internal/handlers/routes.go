package handlers

import (
	"net/http"

	"github.com/valentine/backend/internal/valentine"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	presets := PresetHandler{}
	valentines := ValentineHandler{
		Assembler:           deps.Assembler,
		Resolver:            deps.Resolver,
		Summaries:           deps.Summaries,
		Trimmer:             deps.Trimmer,
		Limiter:             deps.Limiter,
		CreatorPasswordHash: deps.CreatorPasswordHash,
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/presets", presets.Handle)
	mux.HandleFunc("/api/v1/valentines", valentines.Create)
	mux.HandleFunc("/api/v1/valentines/redeem", valentines.Redeem)
	mux.HandleFunc("/api/v1/valentines/summary", valentines.Summary)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Assembler           Assembler
	Resolver            Resolver
	Summaries           SummaryStore
	Trimmer             valentine.Trimmer
	Limiter             RateLimiter
	CreatorPasswordHash string
}
