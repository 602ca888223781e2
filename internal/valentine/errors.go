package valentine

import "errors"

var (
	// ErrRecipientRequired indicates the draft is missing the recipient name.
	ErrRecipientRequired = errors.New("recipient name is required")
	// ErrTooManyPhotos indicates the draft exceeds the photo limit.
	ErrTooManyPhotos = errors.New("a valentine holds at most 8 photos")
	// ErrVideoTooLarge indicates the video blob exceeds the configured size cap.
	ErrVideoTooLarge = errors.New("video exceeds the allowed size")
)
