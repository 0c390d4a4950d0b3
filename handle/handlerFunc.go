package handle

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mediaMetaViewer/media"
	"mediaMetaViewer/preview"
	"mediaMetaViewer/staging"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before net/http spills it to disk.
const multipartMemory = 8 << 20

//go:embed index.html
var indexHTML []byte

type apiError struct {
	Error string   `json:"error"`
	Lines []string `json:"lines,omitempty"`
}

type healthResp struct {
	Ok        bool      `json:"ok"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type inspectResp struct {
	Kind      media.Kind         `json:"kind"`
	FileName  string             `json:"fileName"`
	Size      int64              `json:"size"`
	SizeHuman string             `json:"sizeHuman"`
	SHA256    string             `json:"sha256"`
	Record    *media.MediaRecord `json:"record,omitempty"`
	Lines     []string           `json:"lines"`
	Preview   string             `json:"preview,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func index() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(indexHTML)
	})
}

//Health Health Check controller
func (c *Controller) health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResp{Ok: true, Version: c.Version, Timestamp: time.Now()})
	})
}

// inspect stages the multipart "file" field, reads its metadata and answers
// with the record and its rendering. The staged copy is removed on every path.
func (c *Controller) inspect() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := c.Log.WithField("request", uuid.NewString())

		if c.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, c.MaxUploadBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "upload too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart upload"})
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "missing file field"})
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = media.TypeByExtension(header.Filename)
		}

		staged, err := staging.Stage(file, c.TempDir, header.Filename)
		if err != nil {
			log.WithError(err).Error("failed to stage upload")
			writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
			return
		}
		defer func() {
			if err := staged.Remove(); err != nil {
				log.WithError(err).Warn("failed to remove staged upload")
			}
		}()

		log = log.WithFields(logrus.Fields{"file": staged.Name, "size": staged.HumanSize(), "type": mimeType})
		log.Info("inspecting upload")

		res, err := c.Inspector.Inspect(r.Context(), media.Upload{Path: staged.Path, MimeType: mimeType})
		resp := inspectResp{
			Kind:      res.Kind,
			FileName:  staged.Name,
			Size:      staged.Size,
			SizeHuman: staged.HumanSize(),
			SHA256:    staged.SHA256,
			Lines:     media.Report(res, err),
		}

		status := http.StatusOK
		switch {
		case err == nil:
			rec := res.Record.Presented()
			resp.Record = &rec
		case errors.Is(err, media.ErrUnsupportedFormat):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, media.ErrExtractionFailed):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, media.ErrTranscodeFailed):
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
		if err != nil {
			resp.Error = err.Error()
		}

		if res.Kind == media.Image {
			if uri, perr := preview.DataURI(staged.Path, c.PreviewSize); perr == nil {
				resp.Preview = uri
			} else {
				log.WithError(perr).Debug("no preview")
			}
		}

		log.WithField("status", status).Info("upload inspected")
		writeJSON(w, status, resp)
	})
}
