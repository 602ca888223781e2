package valentine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/valentine/backend/internal/models"
	"github.com/valentine/backend/internal/repositories"
)

// ProgressFunc receives a 0-100 completion percentage. Invocations are
// monotonically non-decreasing and the final call reports exactly 100.
type ProgressFunc func(percent float64)

// Assembler runs the full save pipeline: allocate a code, insert the parent
// record, upload every media blob concurrently, index each upload, and hand
// back the assembled valentine. Any single failure fails the whole call;
// rows written before the failure are not cleaned up.
type Assembler struct {
	records RecordStore
	media   MediaStorage
	codes   *CodeGenerator
	logger  *slog.Logger

	// NowFunc stamps storage paths; tests may override it.
	NowFunc func() time.Time
}

// NewAssembler wires the pipeline against the provided collaborators.
func NewAssembler(records RecordStore, media MediaStorage, codes *CodeGenerator, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		records: records,
		media:   media,
		codes:   codes,
		logger:  logger,
	}
}

// progress markers: code allocation accounts for the first 10%, the parent
// insert brings it to 30%, uploads share the next 60%, assembly closes at 100.
const (
	progressCodeAllocated = 10
	progressParentStored  = 30
	progressUploadShare   = 60
	progressDone          = 100
)

// Assemble persists the draft and returns the assembled valentine. onProgress
// may be nil when the caller does not care about intermediate state.
func (a *Assembler) Assemble(ctx context.Context, draft Draft, onProgress ProgressFunc) (models.Valentine, error) {
	if err := draft.validate(); err != nil {
		return models.Valentine{}, err
	}
	if onProgress == nil {
		onProgress = func(float64) {}
	}

	record := models.Valentine{
		RecipientName: draft.RecipientName,
		CreatorName:   draft.CreatorName,
		FavoriteColor: draft.FavoriteColor,
		MusicEnabled:  draft.MusicEnabled,
		SpecialDate:   draft.SpecialDate,
		Memories:      draft.Memories,
		Reasons:       normalizedReasons(draft.Reasons),
		ProposalType:  normalizedProposalType(draft.ProposalType),
	}

	id, createdAt, code, err := a.insertParent(ctx, record, onProgress)
	if err != nil {
		return models.Valentine{}, err
	}
	record.ID = id
	record.Code = code
	record.CreatedAt = createdAt

	onProgress(progressParentStored)

	totalUploads := len(draft.Photos)
	if draft.Video != nil {
		totalUploads++
	}
	if draft.VoiceNote != nil {
		totalUploads++
	}

	if totalUploads == 0 {
		onProgress(progressDone)
		return record, nil
	}

	tracker := &uploadTracker{total: totalUploads, report: onProgress}

	type photoResult struct {
		index int
		url   string
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		photos   []photoResult
		videoURL string
		voiceURL string
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	now := a.now()

	for i := range draft.Photos {
		wg.Add(1)
		go func(index int, photo PhotoInput) {
			defer wg.Done()

			path := photoPath(id, index, now)
			url, err := a.uploadAndIndex(ctx, uploadUnit{
				valentineID: id,
				kind:        models.MediaKindPhoto,
				path:        path,
				contentType: photoContentType,
				data:        photo.Data,
				order:       index,
			})
			if err != nil {
				fail(fmt.Errorf("photo %d: %w", index, err))
				return
			}

			mu.Lock()
			photos = append(photos, photoResult{index: index, url: url})
			mu.Unlock()
			tracker.done()
		}(i, draft.Photos[i])
	}

	if draft.Video != nil {
		wg.Add(1)
		go func(video MediaInput) {
			defer wg.Done()

			url, err := a.uploadAndIndex(ctx, uploadUnit{
				valentineID: id,
				kind:        models.MediaKindVideo,
				path:        videoPath(id, now),
				contentType: videoContentType,
				data:        video.Data,
			})
			if err != nil {
				fail(fmt.Errorf("video: %w", err))
				return
			}

			mu.Lock()
			videoURL = url
			mu.Unlock()
			tracker.done()
		}(*draft.Video)
	}

	if draft.VoiceNote != nil {
		wg.Add(1)
		go func(voice MediaInput) {
			defer wg.Done()

			contentType := voice.ContentType
			if contentType == "" {
				contentType = voiceContentType
			}

			url, err := a.uploadAndIndex(ctx, uploadUnit{
				valentineID: id,
				kind:        models.MediaKindVoiceNote,
				path:        voicePath(id, voice.ContentType, now),
				contentType: contentType,
				data:        voice.Data,
			})
			if err != nil {
				fail(fmt.Errorf("voice note: %w", err))
				return
			}

			mu.Lock()
			voiceURL = url
			mu.Unlock()
			tracker.done()
		}(*draft.VoiceNote)
	}

	wg.Wait()

	if firstErr != nil {
		a.logger.Error("valentine assembly failed", "valentineId", id, "code", code, "error", firstErr)
		return models.Valentine{}, firstErr
	}

	// Uploads complete in arbitrary order; restore the creator's selection
	// order from the captured submission index.
	sort.Slice(photos, func(i, j int) bool { return photos[i].index < photos[j].index })

	record.Photos = make([]string, 0, len(photos))
	for _, p := range photos {
		record.Photos = append(record.Photos, p.url)
	}
	record.VideoURL = videoURL
	record.VoiceNoteURL = voiceURL

	onProgress(progressDone)
	a.logger.Info("valentine assembled", "valentineId", id, "code", code, "uploads", totalUploads)

	return record, nil
}

// insertParent allocates a code and inserts the parent row, re-allocating
// whenever the store reports a duplicate key. Media rows reference the parent
// by foreign key, so nothing is uploaded until this succeeds.
func (a *Assembler) insertParent(ctx context.Context, record models.Valentine, onProgress ProgressFunc) (id string, createdAt time.Time, code string, err error) {
	reported := false

	for {
		code, err = a.codes.Allocate(ctx)
		if err != nil {
			return "", time.Time{}, "", err
		}

		if !reported {
			onProgress(progressCodeAllocated)
			reported = true
		}

		record.Code = code
		id, createdAt, err = a.records.CreateValentine(ctx, record)
		if errors.Is(err, repositories.ErrConflict) {
			// Lost the allocation race; draw a fresh code.
			a.logger.Warn("code collision on insert, retrying", "code", code)
			continue
		}
		if err != nil {
			return "", time.Time{}, "", fmt.Errorf("insert valentine: %w", err)
		}
		return id, createdAt, code, nil
	}
}

type uploadUnit struct {
	valentineID string
	kind        string
	path        string
	contentType string
	data        []byte
	order       int
}

// uploadAndIndex pushes one blob to media storage and records its index row.
func (a *Assembler) uploadAndIndex(ctx context.Context, unit uploadUnit) (string, error) {
	if err := a.media.Save(ctx, unit.path, unit.contentType, bytes.NewReader(unit.data)); err != nil {
		return "", fmt.Errorf("upload %s: %w", unit.path, err)
	}

	url := a.media.PublicURL(unit.path)

	item := models.MediaItem{
		ValentineID: unit.valentineID,
		Kind:        unit.kind,
		Path:        unit.path,
		URL:         url,
		Order:       unit.order,
	}
	if err := a.records.CreateMediaItem(ctx, item); err != nil {
		return "", fmt.Errorf("index %s: %w", unit.path, err)
	}

	return url, nil
}

// uploadTracker feeds the progress callback from completed uploads only, so
// observers see an accurate completion ratio under uneven upload latency.
type uploadTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	report    ProgressFunc
}

func (t *uploadTracker) done() {
	t.mu.Lock()
	t.completed++
	percent := progressParentStored + float64(t.completed)/float64(t.total)*progressUploadShare
	t.report(percent)
	t.mu.Unlock()
}

func (a *Assembler) now() time.Time {
	if a.NowFunc != nil {
		return a.NowFunc()
	}
	return time.Now().UTC()
}
