package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/valentine/backend/internal/logging"
	"github.com/valentine/backend/internal/models"
	"github.com/valentine/backend/internal/repositories"
	"github.com/valentine/backend/internal/valentine"
)

// maxMultipartMemory bounds the in-memory portion of a create request; larger
// parts spill to temp files.
const maxMultipartMemory = 64 << 20

// ValentineHandler implements the create, redeem, and summary endpoints.
type ValentineHandler struct {
	Assembler Assembler
	Resolver  Resolver
	Summaries SummaryStore
	Trimmer   valentine.Trimmer
	Limiter   RateLimiter

	// CreatorPasswordHash gates creator endpoints; empty disables the gate.
	CreatorPasswordHash string
}

// Create handles POST /api/v1/valentines: a multipart form carrying the
// creator's fields plus photo/video/voice-note blobs. The access code is only
// revealed once every upload and index row has been persisted.
func (h ValentineHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Assembler == nil {
		logger.Error("assembler unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "valentine service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "create") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	if !h.creatorAuthorized(r) {
		logger.Warn("creator password rejected")
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid creator password"})
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		logger.Warn("invalid multipart payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}

	draft, err := h.draftFromForm(ctx, r)
	if err != nil {
		status := http.StatusBadRequest
		if !isDraftError(err) {
			logger.Error("read create payload", "error", err)
			status = http.StatusInternalServerError
		}
		respondJSON(ctx, w, status, map[string]string{"error": err.Error()})
		return
	}

	spanCtx, span := logging.StartSpan(ctx, "assemble_valentine")
	assembled, err := h.Assembler.Assemble(spanCtx, draft, func(percent float64) {
		logger.Debug("assembly progress", "percent", percent)
	})
	span.End()
	if err != nil {
		switch {
		case isDraftError(err):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			logger.Error("assemble valentine", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save valentine"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, valentineResponse{Valentine: toPayload(assembled)})
}

// Redeem handles GET /api/v1/valentines/redeem?code=XXXXXX. A wrong code is
// the expected path and answers 404; store failures answer 500.
func (h ValentineHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Resolver == nil {
		logger.Error("resolver unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "valentine service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "redeem") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	code := r.URL.Query().Get("code")
	if !valentine.ValidCode(code) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "malformed code"})
		return
	}

	record, err := h.Resolver.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "invalid code"})
			return
		}
		logger.Error("redeem valentine", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load valentine"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, valentineResponse{Valentine: toPayload(record)})
}

// Summary handles GET /api/v1/valentines/summary for the creator overview.
func (h ValentineHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Summaries == nil {
		logger.Error("summary store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "valentine service unavailable"})
		return
	}

	if !h.creatorAuthorized(r) {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid creator password"})
		return
	}

	summaries, err := h.Summaries.ListSummaries(ctx)
	if err != nil {
		logger.Error("list summaries", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list valentines"})
		return
	}

	out := make([]summaryPayload, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryPayload{
			Code:           s.Code,
			RecipientName:  s.RecipientName,
			CreatorName:    s.CreatorName,
			CreatedAt:      s.CreatedAt,
			PhotoCount:     s.PhotoCount,
			VideoCount:     s.VideoCount,
			VoiceNoteCount: s.VoiceNoteCount,
		})
	}

	respondJSON(ctx, w, http.StatusOK, summariesResponse{Summaries: out})
}

func (h ValentineHandler) creatorAuthorized(r *http.Request) bool {
	if h.CreatorPasswordHash == "" {
		return true
	}
	password := r.Header.Get("X-Creator-Password")
	if password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(h.CreatorPasswordHash), []byte(password)) == nil
}

// draftFromForm converts the parsed multipart form into a Draft, applying the
// video trimmer before the blob enters the pipeline.
func (h ValentineHandler) draftFromForm(ctx context.Context, r *http.Request) (valentine.Draft, error) {
	draft := valentine.Draft{
		RecipientName: strings.TrimSpace(r.FormValue("recipientName")),
		CreatorName:   strings.TrimSpace(r.FormValue("creatorName")),
		FavoriteColor: strings.TrimSpace(r.FormValue("favoriteColor")),
		MusicEnabled:  r.FormValue("musicEnabled") == "true",
		Memories:      strings.TrimSpace(r.FormValue("memories")),
		ProposalType:  r.FormValue("proposalType"),
		Reasons:       r.MultipartForm.Value["reasons"],
	}

	if date := strings.TrimSpace(r.FormValue("specialDate")); date != "" {
		draft.SpecialDate = &models.SpecialDate{
			Date:    date,
			Context: strings.TrimSpace(r.FormValue("specialDateContext")),
		}
	}

	photoHeaders := r.MultipartForm.File["photos"]
	if len(photoHeaders) > valentine.MaxPhotos {
		return valentine.Draft{}, valentine.ErrTooManyPhotos
	}
	for _, fh := range photoHeaders {
		data, err := readPart(fh)
		if err != nil {
			return valentine.Draft{}, err
		}
		draft.Photos = append(draft.Photos, valentine.PhotoInput{ID: fh.Filename, Data: data})
	}

	if video, ok := singlePart(r, "video"); ok {
		data, err := readPart(video)
		if err != nil {
			return valentine.Draft{}, err
		}
		in := valentine.MediaInput{Data: data, ContentType: video.Header.Get("Content-Type")}
		if h.Trimmer != nil {
			in, err = h.Trimmer.Trim(ctx, in)
			if err != nil {
				return valentine.Draft{}, err
			}
		}
		draft.Video = &in
	}

	if voice, ok := singlePart(r, "voiceNote"); ok {
		data, err := readPart(voice)
		if err != nil {
			return valentine.Draft{}, err
		}
		draft.VoiceNote = &valentine.MediaInput{Data: data, ContentType: voice.Header.Get("Content-Type")}
	}

	return draft, nil
}

func singlePart(r *http.Request, field string) (*multipart.FileHeader, bool) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, false
	}
	return headers[0], true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func isDraftError(err error) bool {
	return errors.Is(err, valentine.ErrRecipientRequired) ||
		errors.Is(err, valentine.ErrTooManyPhotos) ||
		errors.Is(err, valentine.ErrVideoTooLarge)
}

func toPayload(v models.Valentine) valentinePayload {
	photos := v.Photos
	if photos == nil {
		photos = []string{}
	}
	return valentinePayload{
		Code:          v.Code,
		RecipientName: v.RecipientName,
		CreatorName:   v.CreatorName,
		FavoriteColor: v.FavoriteColor,
		MusicEnabled:  v.MusicEnabled,
		SpecialDate:   v.SpecialDate,
		Memories:      v.Memories,
		Reasons:       v.Reasons,
		ProposalType:  v.ProposalType,
		Photos:        photos,
		Video:         v.VideoURL,
		VoiceNote:     v.VoiceNoteURL,
		CreatedAt:     v.CreatedAt,
	}
}

type valentinePayload struct {
	Code          string              `json:"code"`
	RecipientName string              `json:"recipientName"`
	CreatorName   string              `json:"creatorName,omitempty"`
	FavoriteColor string              `json:"favoriteColor"`
	MusicEnabled  bool                `json:"musicEnabled"`
	SpecialDate   *models.SpecialDate `json:"specialDate,omitempty"`
	Memories      string              `json:"memories,omitempty"`
	Reasons       []string            `json:"reasons"`
	ProposalType  string              `json:"proposalType"`
	Photos        []string            `json:"photos"`
	Video         string              `json:"video,omitempty"`
	VoiceNote     string              `json:"voiceNote,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type valentineResponse struct {
	Valentine valentinePayload `json:"valentine"`
}

type summaryPayload struct {
	Code           string    `json:"code"`
	RecipientName  string    `json:"recipientName"`
	CreatorName    string    `json:"creatorName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	PhotoCount     int       `json:"photoCount"`
	VideoCount     int       `json:"videoCount"`
	VoiceNoteCount int       `json:"voiceNoteCount"`
}

type summariesResponse struct {
	Summaries []summaryPayload `json:"summaries"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	logger := logging.FromContext(ctx)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response body", "status", status, "error", err)
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest && status != http.StatusNotFound:
		// 404 is the expected wrong-code path, not worth a warning.
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
