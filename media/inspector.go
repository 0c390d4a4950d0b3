package media

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Upload is one file handed to the Inspector: where its bytes are staged and
// what type the client declared.
type Upload struct {
	Path     string
	MimeType string
}

type Result struct {
	Classification
	Record MediaRecord `json:"record"`
}

// Inspector classifies an upload and routes it to the matching extractor.
// It keeps no state between calls.
type Inspector struct {
	Images     *ImageExtractor
	Videos     *VideoExtractor
	Transcoder Transcoder
	Log        logrus.FieldLogger
}

func NewInspector(images *ImageExtractor, videos *VideoExtractor, transcoder Transcoder, log logrus.FieldLogger) *Inspector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Inspector{
		Images:     images,
		Videos:     videos,
		Transcoder: transcoder,
		Log:        log,
	}
}

// Inspect reads the metadata of one upload. Unsupported types yield
// ErrUnsupportedFormat and no record. A failed transcode aborts the video
// path with ErrTranscodeFailed.
func (i *Inspector) Inspect(ctx context.Context, u Upload) (Result, error) {
	res := Result{Classification: Classify(u.MimeType)}
	log := i.Log.WithFields(logrus.Fields{"file": u.Path, "kind": res.Kind})

	switch res.Kind {
	case Image:
		rec, err := i.inspectImage(u.Path)
		if err != nil {
			log.WithError(err).Warn("image metadata unavailable")
			return res, err
		}
		res.Record = rec

	case Video:
		path := u.Path
		if res.NeedsTranscode {
			out, err := i.transcode(ctx, path)
			if err != nil {
				log.WithError(err).Error("transcode failed")
				return res, err
			}
			if out != path {
				defer os.Remove(out)
			}
			log.WithField("output", out).Debug("transcoded legacy container")
			path = out
		}
		rec, err := i.Videos.Extract(ctx, path)
		if err != nil {
			log.WithError(err).Warn("video metadata unavailable")
			return res, err
		}
		res.Record = rec

	default:
		return res, fmt.Errorf("%w: %q", ErrUnsupportedFormat, u.MimeType)
	}

	log.Debug("metadata extracted")
	return res, nil
}

func (i *Inspector) inspectImage(path string) (MediaRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return MediaRecord{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	defer f.Close()
	return i.Images.Extract(f)
}

func (i *Inspector) transcode(ctx context.Context, path string) (string, error) {
	if i.Transcoder == nil {
		return "", fmt.Errorf("%w: no transcoder configured", ErrTranscodeFailed)
	}
	out, err := i.Transcoder.Transcode(ctx, path)
	if err != nil {
		if errors.Is(err, ErrTranscodeFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrTranscodeFailed, err)
	}
	return out, nil
}
