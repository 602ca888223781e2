package valentine

import "context"

// Trimmer bounds recipient-facing video clips before upload. Trimming happens
// out of process (the capture client records at most ~30s); implementations
// only guarantee an upper bound, never an exact cutoff.
type Trimmer interface {
	Trim(ctx context.Context, video MediaInput) (MediaInput, error)
}

// SizeCapTrimmer passes blobs through unchanged and rejects anything above
// MaxBytes. It stands in for a real trimmer when the client already bounded
// the clip duration.
type SizeCapTrimmer struct {
	MaxBytes int64
}

// Trim returns the input unchanged or ErrVideoTooLarge.
func (t SizeCapTrimmer) Trim(_ context.Context, video MediaInput) (MediaInput, error) {
	if t.MaxBytes > 0 && int64(len(video.Data)) > t.MaxBytes {
		return MediaInput{}, ErrVideoTooLarge
	}
	return video, nil
}

var _ Trimmer = SizeCapTrimmer{}
