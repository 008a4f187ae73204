package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/livepeer/reframe-media/store"
)

// stubBackend is a hand-written storage.Backend for handler-level tests, in
// place of exercising storage.Local against a real temp directory.
type stubBackend struct {
	writeFileURI string
	writeErr     error
}

func (b *stubBackend) WriteFile(relDir, filename, sourcePath, mimeType string) (string, error) {
	if b.writeErr != nil {
		return "", b.writeErr
	}
	if b.writeFileURI != "" {
		return b.writeFileURI, nil
	}
	return fmt.Sprintf("/media/%s/%s", relDir, filename), nil
}

func (b *stubBackend) WriteBytes(relDir, filename string, data []byte, mimeType string) (string, error) {
	return b.WriteFile(relDir, filename, "", mimeType)
}

func (b *stubBackend) ResolveLocalPath(uri string) (string, error) {
	return "", fmt.Errorf("not a local uri: %s", uri)
}

func (b *stubBackend) GetDownloadURL(uri string, presign bool) (string, error) {
	return uri, nil
}

func newUploadRequest(t *testing.T, kind, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("kind", kind))

	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadAssetRejectsContentTypeMismatch(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mediaRoot := t.TempDir()
	s := &Server{Store: store.New(db), Backend: &stubBackend{}, MediaRoot: mediaRoot, MaxUploadBytes: 1 << 20}

	req := newUploadRequest(t, "video", "notes.txt", "text/plain", []byte("hello"))
	rec := httptest.NewRecorder()
	s.uploadAsset(rec, req, httprouter.Params{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "VALIDATION_ERROR", envelope.Code)
}

func TestUploadAssetAcceptsMatchingKindAndContentType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mediaRoot := t.TempDir()
	s := &Server{Store: store.New(db), Backend: &stubBackend{}, MediaRoot: mediaRoot, MaxUploadBytes: 1 << 20}

	mock.ExpectExec("INSERT INTO media_assets").WillReturnResult(sqlmock.NewResult(1, 1))

	req := newUploadRequest(t, "subtitle", "two_cues.srt", "text/plain", []byte("1\n00:00:00,000 --> 00:00:01,000\nHi\n"))
	rec := httptest.NewRecorder()
	s.uploadAsset(rec, req, httprouter.Params{})

	require.Equal(t, http.StatusCreated, rec.Code)
	var asset store.MediaAsset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asset))
	require.Equal(t, store.AssetKindSubtitle, asset.Kind)
	require.NoError(t, mock.ExpectationsWereMet())

	// uploadAsset must clean up its staging file regardless of outcome.
	entries, _ := os.ReadDir(mediaRoot + "/tmp")
	for _, e := range entries {
		require.Fail(t, "staging file left behind", "found %s", e.Name())
	}
}

func TestUploadAssetRejectsUnknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := &Server{Store: store.New(db), Backend: &stubBackend{}, MediaRoot: t.TempDir(), MaxUploadBytes: 1 << 20}

	req := newUploadRequest(t, "banana", "clip.mp4", "video/mp4", []byte("data"))
	rec := httptest.NewRecorder()
	s.uploadAsset(rec, req, httprouter.Params{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAssetConflictsWhenReferenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := &Server{Store: store.New(db), Backend: &stubBackend{}}

	mock.ExpectQuery("SELECT .* FROM media_assets WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "uri", "mime_type", "duration_seconds", "created_at", "updated_at"}).
			AddRow("asset-1", "video", "/media/tmp/asset-1.mp4", "video/mp4", nil, time.Now(), time.Now()))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM jobs WHERE input_asset_id").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rec := doJSON(s.deleteAsset, http.MethodDelete, "/assets/asset-1", nil, httprouter.Params{{Key: "id", Value: "asset-1"}})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
