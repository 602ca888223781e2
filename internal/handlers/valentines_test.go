package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/valentine/backend/internal/models"
	"github.com/valentine/backend/internal/repositories"
	"github.com/valentine/backend/internal/valentine"
)

type stubAssembler struct {
	lastDraft valentine.Draft
	result    models.Valentine
	err       error
}

func (s *stubAssembler) Assemble(_ context.Context, draft valentine.Draft, onProgress valentine.ProgressFunc) (models.Valentine, error) {
	s.lastDraft = draft
	if onProgress != nil {
		onProgress(100)
	}
	if s.err != nil {
		return models.Valentine{}, s.err
	}
	return s.result, nil
}

type stubResolver struct {
	result models.Valentine
	err    error
}

func (s *stubResolver) Resolve(context.Context, string) (models.Valentine, error) {
	if s.err != nil {
		return models.Valentine{}, s.err
	}
	return s.result, nil
}

type stubSummaryStore struct {
	summaries []models.ValentineSummary
	err       error
}

func (s *stubSummaryStore) ListSummaries(context.Context) ([]models.ValentineSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summaries, nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func sampleValentine() models.Valentine {
	return models.Valentine{
		ID:            "id-1",
		Code:          "W2X9YZ",
		RecipientName: "Alex",
		FavoriteColor: "#FF1493",
		Reasons:       valentine.DefaultReasons,
		ProposalType:  models.ProposalTypeAsking,
		Photos:        []string{"https://cdn.example.com/id-1/photo-0-1.jpg"},
		CreatedAt:     time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC),
	}
}

type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipartBody() *multipartBody {
	b := &multipartBody{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

func (b *multipartBody) field(name, value string) *multipartBody {
	_ = b.writer.WriteField(name, value)
	return b
}

func (b *multipartBody) file(field, name string, data []byte) *multipartBody {
	part, _ := b.writer.CreateFormFile(field, name)
	_, _ = part.Write(data)
	return b
}

func (b *multipartBody) request(t *testing.T) *http.Request {
	t.Helper()
	if err := b.writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/valentines", &b.buf)
	req.Header.Set("Content-Type", b.writer.FormDataContentType())
	return req
}

func TestValentineHandlerCreate(t *testing.T) {
	assembler := &stubAssembler{result: sampleValentine()}
	handler := ValentineHandler{Assembler: assembler}

	req := newMultipartBody().
		field("recipientName", "Alex").
		field("favoriteColor", "#FF1493").
		field("musicEnabled", "true").
		field("specialDate", "2023-06-01").
		field("specialDateContext", "Our first date").
		field("reasons", "you laugh at my jokes").
		field("reasons", "  ").
		field("proposalType", "wishing").
		file("photos", "a.jpg", []byte("photo-a")).
		file("photos", "b.jpg", []byte("photo-b")).
		file("voiceNote", "note.webm", []byte("voice")).
		request(t)

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp valentineResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valentine.Code != "W2X9YZ" {
		t.Fatalf("expected revealed code, got %q", resp.Valentine.Code)
	}

	draft := assembler.lastDraft
	if draft.RecipientName != "Alex" || !draft.MusicEnabled {
		t.Fatalf("unexpected draft scalars: %+v", draft)
	}
	if len(draft.Photos) != 2 || string(draft.Photos[0].Data) != "photo-a" {
		t.Fatalf("unexpected draft photos: %+v", draft.Photos)
	}
	if draft.VoiceNote == nil || draft.Video != nil {
		t.Fatalf("expected voice note only, got %+v", draft)
	}
	if draft.SpecialDate == nil || draft.SpecialDate.Context != "Our first date" {
		t.Fatalf("unexpected special date: %+v", draft.SpecialDate)
	}
	if draft.ProposalType != "wishing" {
		t.Fatalf("unexpected proposal type %q", draft.ProposalType)
	}
}

func TestValentineHandlerCreateFailures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sweethearts"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	okBody := func() *http.Request {
		return newMultipartBody().field("recipientName", "Alex").request(t)
	}

	cases := []struct {
		name       string
		handler    ValentineHandler
		request    func() *http.Request
		wantStatus int
	}{
		{
			"wrongMethod",
			ValentineHandler{Assembler: &stubAssembler{}},
			func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/v1/valentines", nil) },
			http.StatusMethodNotAllowed,
		},
		{
			"missingAssembler",
			ValentineHandler{},
			okBody,
			http.StatusInternalServerError,
		},
		{
			"rateLimited",
			ValentineHandler{Assembler: &stubAssembler{}, Limiter: denyAllLimiter{}},
			okBody,
			http.StatusTooManyRequests,
		},
		{
			"wrongPassword",
			ValentineHandler{Assembler: &stubAssembler{}, CreatorPasswordHash: string(hash)},
			okBody,
			http.StatusUnauthorized,
		},
		{
			"notMultipart",
			ValentineHandler{Assembler: &stubAssembler{}},
			func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/valentines", bytes.NewReader([]byte("{}")))
			},
			http.StatusBadRequest,
		},
		{
			"missingRecipient",
			ValentineHandler{Assembler: &stubAssembler{err: valentine.ErrRecipientRequired}},
			func() *http.Request { return newMultipartBody().field("creatorName", "Sam").request(t) },
			http.StatusBadRequest,
		},
		{
			"assemblerFailure",
			ValentineHandler{Assembler: &stubAssembler{err: errors.New("boom")}},
			okBody,
			http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.handler.Create(rec, tc.request())
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestValentineHandlerCreateAcceptsPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sweethearts"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	handler := ValentineHandler{Assembler: &stubAssembler{result: sampleValentine()}, CreatorPasswordHash: string(hash)}

	req := newMultipartBody().field("recipientName", "Alex").request(t)
	req.Header.Set("X-Creator-Password", "sweethearts")

	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}
}

func TestValentineHandlerCreateTooManyPhotos(t *testing.T) {
	body := newMultipartBody().field("recipientName", "Alex")
	for i := 0; i <= valentine.MaxPhotos; i++ {
		body.file("photos", "p.jpg", []byte("x"))
	}

	rec := httptest.NewRecorder()
	ValentineHandler{Assembler: &stubAssembler{}}.Create(rec, body.request(t))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestValentineHandlerCreateOversizedVideo(t *testing.T) {
	body := newMultipartBody().
		field("recipientName", "Alex").
		file("video", "clip.mp4", make([]byte, 64))

	handler := ValentineHandler{
		Assembler: &stubAssembler{},
		Trimmer:   valentine.SizeCapTrimmer{MaxBytes: 16},
	}

	rec := httptest.NewRecorder()
	handler.Create(rec, body.request(t))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestValentineHandlerRedeem(t *testing.T) {
	handler := ValentineHandler{Resolver: &stubResolver{result: sampleValentine()}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/valentines/redeem?code=w2x9yz", nil)
	rec := httptest.NewRecorder()
	handler.Redeem(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp valentineResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valentine.RecipientName != "Alex" || len(resp.Valentine.Photos) != 1 {
		t.Fatalf("unexpected payload: %+v", resp.Valentine)
	}
}

func TestValentineHandlerRedeemFailures(t *testing.T) {
	cases := []struct {
		name       string
		handler    ValentineHandler
		target     string
		method     string
		wantStatus int
	}{
		{"wrongMethod", ValentineHandler{Resolver: &stubResolver{}}, "/api/v1/valentines/redeem?code=ABCDEF", http.MethodPost, http.StatusMethodNotAllowed},
		{"missingResolver", ValentineHandler{}, "/api/v1/valentines/redeem?code=ABCDEF", http.MethodGet, http.StatusInternalServerError},
		{"rateLimited", ValentineHandler{Resolver: &stubResolver{}, Limiter: denyAllLimiter{}}, "/api/v1/valentines/redeem?code=ABCDEF", http.MethodGet, http.StatusTooManyRequests},
		{"missingCode", ValentineHandler{Resolver: &stubResolver{}}, "/api/v1/valentines/redeem", http.MethodGet, http.StatusBadRequest},
		{"malformedCode", ValentineHandler{Resolver: &stubResolver{}}, "/api/v1/valentines/redeem?code=O01IXY", http.MethodGet, http.StatusBadRequest},
		{"unknownCode", ValentineHandler{Resolver: &stubResolver{err: repositories.ErrNotFound}}, "/api/v1/valentines/redeem?code=ZZZZZZ", http.MethodGet, http.StatusNotFound},
		{"storeFailure", ValentineHandler{Resolver: &stubResolver{err: errors.New("db down")}}, "/api/v1/valentines/redeem?code=ABCDEF", http.MethodGet, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := httptest.NewRecorder()
			tc.handler.Redeem(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestValentineHandlerSummary(t *testing.T) {
	store := &stubSummaryStore{summaries: []models.ValentineSummary{
		{Code: "W2X9YZ", RecipientName: "Alex", PhotoCount: 3, VideoCount: 1},
	}}
	handler := ValentineHandler{Summaries: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/valentines/summary", nil)
	rec := httptest.NewRecorder()
	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp summariesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Summaries) != 1 || resp.Summaries[0].PhotoCount != 3 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestValentineHandlerSummaryFailures(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/valentines/summary", nil)

	rec := httptest.NewRecorder()
	ValentineHandler{}.Summary(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal error got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ValentineHandler{Summaries: &stubSummaryStore{err: errors.New("db down")}}.Summary(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal error got %d", rec.Code)
	}
}

func TestPresetHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)
	rec := httptest.NewRecorder()
	PresetHandler{}.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp presetsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Reasons) != 5 || len(resp.Colors) != 8 {
		t.Fatalf("unexpected preset catalog: %d reasons, %d colors", len(resp.Reasons), len(resp.Colors))
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HealthHandler{}.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !bytes.Contains(body, []byte("ok")) {
		t.Fatalf("unexpected body %s", body)
	}
}
