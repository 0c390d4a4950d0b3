package media

import (
	"context"
	"fmt"
)

// creationFields are the document fields consulted for the capture date, in order.
var creationFields = []string{"creation_time", "creation_date"}

// VideoExtractor reads capture date and GPS coordinates from a container's
// metadata document, and duration and frame size from its streams.
type VideoExtractor struct {
	Documents DocumentReader
	Streams   StreamInspector
}

func NewVideoExtractor(documents DocumentReader, streams StreamInspector) *VideoExtractor {
	return &VideoExtractor{Documents: documents, Streams: streams}
}

// Extract populates every field the file carries. GPS comes from ScanGPSLines,
// so the location pair may be half populated.
func (e *VideoExtractor) Extract(ctx context.Context, path string) (MediaRecord, error) {
	doc, err := e.Documents.Open(ctx, path)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("%w: metadata document: %w", ErrExtractionFailed, err)
	}

	// The stream read is independent of the document read.
	info, err := e.Streams.Inspect(path)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("%w: streams: %w", ErrExtractionFailed, err)
	}

	var out MediaRecord
	for _, name := range creationFields {
		if s, ok := doc.Field(name); ok {
			out.TakenAt = &s
			break
		}
	}

	if lat, lon := ScanGPSLines(doc.Lines()); lat != nil || lon != nil {
		out.Location = &Location{Latitude: lat, Longitude: lon}
	}

	d := info.Duration
	out.Duration = &d
	if info.Width > 0 && info.Height > 0 {
		out.Resolution = &Resolution{Width: info.Width, Height: info.Height}
	}
	return out, nil
}
