package media

import (
	"mime"
	"path/filepath"
	"strings"
)

// Kind is the extraction path a declared media type is routed to.
type Kind int

const (
	Unsupported Kind = iota
	Image
	Video
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	default:
		return "unsupported"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "image":
		*k = Image
	case "video":
		*k = Video
	default:
		*k = Unsupported
	}
	return nil
}

// legacyContainer is the one video type that has to be converted to MP4
// before its metadata is read.
const legacyContainer = "video/quicktime"

type Classification struct {
	Kind           Kind `json:"kind"`
	NeedsTranscode bool `json:"needsTranscode"`
}

// Classify decides the extraction path from a declared MIME type.
// Parameters and letter case are ignored.
func Classify(mimeType string) Classification {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case strings.HasPrefix(mt, "image/"):
		return Classification{Kind: Image}
	case strings.HasPrefix(mt, "video/"):
		return Classification{Kind: Video, NeedsTranscode: mt == legacyContainer}
	default:
		return Classification{Kind: Unsupported}
	}
}

// TypeByExtension guesses a MIME type from a file name for callers that have
// no declared type (CLI arguments, multipart parts without a Content-Type).
func TypeByExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov", ".qt":
		return legacyContainer
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
