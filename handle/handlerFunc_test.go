package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaMetaViewer/media"
)

type fakeInspector struct {
	res      media.Result
	err      error
	uploads  []media.Upload
	contents []string
}

func (f *fakeInspector) Inspect(ctx context.Context, u media.Upload) (media.Result, error) {
	f.uploads = append(f.uploads, u)
	data, _ := os.ReadFile(u.Path)
	f.contents = append(f.contents, string(data))
	res := f.res
	res.Classification = media.Classify(u.MimeType)
	return res, f.err
}

func newTestRouter(t *testing.T, insp Inspector) (*mux.Router, string) {
	t.Helper()
	dir := t.TempDir()
	log, _ := test.NewNullLogger()
	r := mux.NewRouter()
	InitializeRoutes(r, &Controller{
		Inspector:      insp,
		TempDir:        dir,
		MaxUploadBytes: 1 << 20,
		PreviewSize:    64,
		Version:        "test",
		Log:            log,
	})
	return r, dir
}

func uploadRequest(t *testing.T, name, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inspect", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeInspect(t *testing.T, rr *httptest.ResponseRecorder) inspectResp {
	t.Helper()
	var resp inspectResp
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func assertNoStagedFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged uploads must not outlive the request")
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, &fakeInspector{})
	for _, path := range []string{"/api/health", "/health_check"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var body healthResp
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.True(t, body.Ok)
		assert.Equal(t, "test", body.Version)
	}
}

func TestIndex(t *testing.T) {
	r, _ := newTestRouter(t, &fakeInspector{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/inspect")
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

func TestInspect_Video(t *testing.T) {
	d := 65.2
	insp := &fakeInspector{res: media.Result{Record: media.MediaRecord{
		Duration:   &d,
		Resolution: &media.Resolution{Width: 1920, Height: 1080},
	}}}
	r, dir := newTestRouter(t, insp)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, uploadRequest(t, "clip.mp4", "video/mp4", []byte("movie bytes")))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeInspect(t, rr)
	assert.Equal(t, media.Video, resp.Kind)
	assert.Equal(t, "clip.mp4", resp.FileName)
	assert.Equal(t, int64(11), resp.Size)
	assert.Len(t, resp.SHA256, 64)
	require.NotNil(t, resp.Record)
	assert.Contains(t, resp.Lines, "Duration: 65.20 seconds")
	assert.Contains(t, resp.Lines, "Resolution: 1920x1080")
	assert.Empty(t, resp.Preview)

	require.Len(t, insp.uploads, 1)
	assert.Equal(t, "video/mp4", insp.uploads[0].MimeType)
	assert.Equal(t, dir, filepath.Dir(insp.uploads[0].Path))
	assert.Equal(t, []string{"movie bytes"}, insp.contents)
	assertNoStagedFiles(t, dir)
}

func TestInspect_HalfLocationOmitted(t *testing.T) {
	lat := "37.7749"
	insp := &fakeInspector{res: media.Result{Record: media.MediaRecord{
		Location: &media.Location{Latitude: &lat},
	}}}
	r, _ := newTestRouter(t, insp)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, uploadRequest(t, "clip.mp4", "video/mp4", []byte("movie bytes")))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "latitude")
	resp := decodeInspect(t, rr)
	require.NotNil(t, resp.Record)
	assert.Nil(t, resp.Record.Location)
	assert.Contains(t, resp.Lines, media.NoLocationMessage)
}

func TestInspect_GuessesTypeFromExtension(t *testing.T) {
	insp := &fakeInspector{}
	r, _ := newTestRouter(t, insp)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, uploadRequest(t, "IMG_0001.MOV", "application/octet-stream", []byte("mov")))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, insp.uploads, 1)
	assert.Equal(t, "video/quicktime", insp.uploads[0].MimeType)
}

func TestInspect_ImageIncludesPreview(t *testing.T) {
	var buf bytes.Buffer
	img := imaging.New(200, 100, color.NRGBA{G: 255, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))

	r, dir := newTestRouter(t, &fakeInspector{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, uploadRequest(t, "shot.png", "image/png", buf.Bytes()))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeInspect(t, rr)
	assert.Equal(t, media.Image, resp.Kind)
	assert.True(t, strings.HasPrefix(resp.Preview, "data:image/jpeg;base64,"))
	assert.Contains(t, resp.Lines, "Taken Date: not available")
	assertNoStagedFiles(t, dir)
}

func TestInspect_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		mime   string
		err    error
		status int
		first  string
	}{
		{"unsupported", "text/plain", fmt.Errorf("%w: %q", media.ErrUnsupportedFormat, "text/plain"), http.StatusUnsupportedMediaType, media.UnsupportedMessage},
		{"extraction", "image/jpeg", fmt.Errorf("%w: bad marker", media.ErrExtractionFailed), http.StatusUnprocessableEntity, media.ExtractionMessage},
		{"transcode", "video/quicktime", fmt.Errorf("%w: exit status 1", media.ErrTranscodeFailed), http.StatusBadGateway, media.TranscodeMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, dir := newTestRouter(t, &fakeInspector{err: tc.err})
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, uploadRequest(t, "upload.bin", tc.mime, []byte("data")))

			require.Equal(t, tc.status, rr.Code)
			resp := decodeInspect(t, rr)
			assert.Nil(t, resp.Record)
			require.NotEmpty(t, resp.Lines)
			assert.Equal(t, tc.first, resp.Lines[0])
			assert.NotEmpty(t, resp.Error)
			assertNoStagedFiles(t, dir)
		})
	}
}

func TestInspect_MissingFileField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	r, _ := newTestRouter(t, &fakeInspector{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body apiError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "missing file field", body.Error)
}

func TestInspect_NotMultipart(t *testing.T) {
	r, _ := newTestRouter(t, &fakeInspector{})
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInspect_TooLarge(t *testing.T) {
	insp := &fakeInspector{}
	r, _ := newTestRouter(t, insp)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, uploadRequest(t, "huge.mp4", "video/mp4", bytes.Repeat([]byte("x"), 2<<20)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, insp.uploads)
}

func TestInspect_MethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t, &fakeInspector{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/inspect", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
