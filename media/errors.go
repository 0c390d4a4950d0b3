package media

import "errors"

var (
	// ErrUnsupportedFormat is returned when the declared type is neither an
	// image nor a video.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed is returned when the tag or container reader could
	// not read the file. No fields are populated alongside it.
	ErrExtractionFailed = errors.New("metadata extraction failed")
	// ErrTranscodeFailed aborts the video path for the legacy container.
	ErrTranscodeFailed = errors.New("transcode failed")
)
