package valentine

import (
	"fmt"
	"strings"
	"time"

	"github.com/valentine/backend/internal/models"
)

const (
	photoContentType = "image/jpeg"
	videoContentType = "video/mp4"
	voiceContentType = "audio/webm"
)

// photoPath yields `{recordId}/photo-{index}-{timestamp}.jpg`.
func photoPath(valentineID string, index int, now time.Time) string {
	return fmt.Sprintf("%s/%s-%d-%d.jpg", valentineID, models.MediaKindPhoto, index, now.UnixMilli())
}

// videoPath yields `{recordId}/video-{timestamp}.mp4`.
func videoPath(valentineID string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%d.mp4", valentineID, models.MediaKindVideo, now.UnixMilli())
}

// voicePath yields `{recordId}/voice-{timestamp}.{ext}` with the extension
// derived from the recorded MIME type.
func voicePath(valentineID, contentType string, now time.Time) string {
	return fmt.Sprintf("%s/voice-%d.%s", valentineID, now.UnixMilli(), voiceExtension(contentType))
}

func voiceExtension(contentType string) string {
	switch {
	case strings.Contains(contentType, "mp4"), strings.Contains(contentType, "m4a"):
		return "m4a"
	case strings.Contains(contentType, "ogg"):
		return "ogg"
	case strings.Contains(contentType, "aac"):
		return "aac"
	default:
		return "webm"
	}
}
