package media

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

func init() {
	// Register manufacturer-specific note parsers so some vendor fields decode correctly.
	exif.RegisterParsers(mknote.All...)
}

// ImageExtractor reads capture date and GPS coordinates from still images.
type ImageExtractor struct {
	Decode TagDecoder
}

func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{Decode: DecodeEXIF}
}

// Extract reads the embedded tags of an image. Duration and resolution are
// never set. Location is set only when both GPS tags exist.
func (e *ImageExtractor) Extract(r io.Reader) (MediaRecord, error) {
	tags, err := e.Decode(r)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	var out MediaRecord
	if s, ok := tags.Field(string(exif.DateTimeOriginal)); ok {
		out.TakenAt = &s
	}

	lat, hasLat := tags.Field(string(exif.GPSLatitude))
	lon, hasLon := tags.Field(string(exif.GPSLongitude))
	if hasLat && hasLon {
		out.Location = &Location{Latitude: &lat, Longitude: &lon}
	}
	return out, nil
}

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	jpegSOI      = []byte{0xFF, 0xD8, 0xFF}
)

// DecodeEXIF parses the EXIF block of a JPEG, TIFF or PNG (eXIf chunk).
// A well-formed JPEG or PNG that carries no EXIF block yields an empty tag
// set, not an error.
func DecodeEXIF(r io.Reader) (Tags, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(pngSignature))

	if bytes.HasPrefix(head, pngSignature) {
		raw, err := pngEXIF(br)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return noTags{}, nil
		}
		return decodeEXIF(bytes.NewReader(raw))
	}

	tags, err := decodeEXIF(br)
	if err != nil && bytes.HasPrefix(head, jpegSOI) && exifMissing(err) {
		return noTags{}, nil
	}
	return tags, err
}

func decodeEXIF(r io.Reader) (Tags, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, err
	}
	return exifTags{x: x}, nil
}

// exifMissing reports whether goexif gave up because the JPEG has no EXIF
// APP1 segment, as opposed to finding one it could not parse.
func exifMissing(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		strings.Contains(err.Error(), "failed to find exif intro marker")
}

// maxEXIFChunk bounds the eXIf chunk read into memory.
const maxEXIFChunk = 16 << 20

// pngEXIF walks the PNG chunk list and returns the eXIf payload, or nil when
// the image ends without one.
func pngEXIF(r io.Reader) ([]byte, error) {
	if _, err := io.CopyN(io.Discard, r, int64(len(pngSignature))); err != nil {
		return nil, err
	}
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("png chunk header: %w", err)
		}
		size := binary.BigEndian.Uint32(hdr[:4])
		typ := string(hdr[4:8])

		switch typ {
		case "eXIf":
			if size > maxEXIFChunk {
				return nil, fmt.Errorf("png eXIf chunk too large: %d bytes", size)
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("png eXIf chunk: %w", err)
			}
			return data, nil
		case "IEND":
			return nil, nil
		}
		// Skip data and CRC.
		if _, err := io.CopyN(io.Discard, r, int64(size)+4); err != nil {
			return nil, fmt.Errorf("png %s chunk: %w", typ, err)
		}
	}
}

// noTags is the tag set of an image without EXIF.
type noTags struct{}

func (noTags) Field(string) (string, bool) { return "", false }
func (noTags) Lines() []string             { return nil }

type exifTags struct {
	x *exif.Exif
}

func (t exifTags) Field(name string) (string, bool) {
	tag, err := t.x.Get(exif.FieldName(name))
	if err != nil {
		return "", false
	}
	return tagText(tag), true
}

func (t exifTags) Lines() []string {
	var w lineWalker
	_ = t.x.Walk(&w)
	sort.Strings(w.lines)
	return w.lines
}

type lineWalker struct {
	lines []string
}

func (w *lineWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.lines = append(w.lines, fmt.Sprintf("- %s: %s", name, tagText(tag)))
	return nil
}

// tagText renders a tag the way it is shown to users: ASCII values as-is,
// rationals as comma separated decimals ("37, 46, 29.99").
func tagText(tag *tiff.Tag) string {
	switch tag.Format() {
	case tiff.StringVal:
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimRight(s, "\x00 ")
		}
	case tiff.RatVal:
		parts := make([]string, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			r, err := tag.Rat(i)
			if err != nil {
				return tag.String()
			}
			f, _ := r.Float64()
			parts = append(parts, strconv.FormatFloat(f, 'f', -1, 64))
		}
		return strings.Join(parts, ", ")
	}
	return tag.String()
}
