package media

import (
	"context"
	"io"
)

// Tags is the narrow view extractors get of a third-party metadata object.
type Tags interface {
	// Field returns the raw value of a named field, if present.
	Field(name string) (string, bool)
	// Lines returns a flattened plain-text dump of everything the reader saw.
	Lines() []string
}

// TagDecoder reads the tag set embedded in a still image.
type TagDecoder func(r io.Reader) (Tags, error)

// DocumentReader parses the metadata document of a video container.
type DocumentReader interface {
	Open(ctx context.Context, path string) (Tags, error)
}

// StreamInspector reads playback duration and frame size from a video file.
type StreamInspector interface {
	Inspect(path string) (StreamInfo, error)
}

// Transcoder converts the legacy container into a universally playable one
// and returns the path of the new file.
type Transcoder interface {
	Transcode(ctx context.Context, src string) (string, error)
}
