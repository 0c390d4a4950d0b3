package media

import (
	"errors"
	"fmt"
)

const (
	NotAvailable       = "not available"
	UnsupportedMessage = "Unsupported file format. Please upload an image or video."
	NoLocationMessage  = "Location information not available."
	TranscodeMessage   = "Video conversion failed; no metadata could be read."
	ExtractionMessage  = "Metadata could not be read from this file."
	metadataHeader     = "Metadata:"
)

// FormatDuration renders elapsed seconds with two decimals: "65.20 seconds".
func FormatDuration(seconds float64) string {
	return fmt.Sprintf("%.2f seconds", seconds)
}

// FormatResolution renders a frame size as WIDTHxHEIGHT.
func FormatResolution(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// Render returns the user-facing lines for a record. Duration and resolution
// lines are only produced for video. A location is shown only when both
// coordinates are known.
func Render(kind Kind, rec MediaRecord) []string {
	lines := []string{metadataHeader}

	if rec.TakenAt != nil {
		lines = append(lines, "Taken Date: "+*rec.TakenAt)
	} else {
		lines = append(lines, "Taken Date: "+NotAvailable)
	}

	if rec.Location.Complete() {
		lines = append(lines, fmt.Sprintf("Taken Location: Latitude %s, Longitude %s",
			*rec.Location.Latitude, *rec.Location.Longitude))
	} else {
		lines = append(lines, NoLocationMessage)
	}

	if kind != Video {
		return lines
	}

	if rec.Duration != nil {
		lines = append(lines, "Duration: "+FormatDuration(*rec.Duration))
	} else {
		lines = append(lines, "Duration: "+NotAvailable)
	}
	if rec.Resolution != nil {
		lines = append(lines, "Resolution: "+FormatResolution(rec.Resolution.Width, rec.Resolution.Height))
	} else {
		lines = append(lines, "Resolution: "+NotAvailable)
	}
	return lines
}

// Report renders the outcome of one inspection, including its failure modes.
func Report(res Result, err error) []string {
	switch {
	case err == nil:
		return Render(res.Kind, res.Record)
	case errors.Is(err, ErrUnsupportedFormat):
		return []string{UnsupportedMessage}
	case errors.Is(err, ErrTranscodeFailed):
		return []string{TranscodeMessage}
	case errors.Is(err, ErrExtractionFailed):
		return append([]string{ExtractionMessage}, Render(res.Kind, MediaRecord{})...)
	default:
		return []string{err.Error()}
	}
}
