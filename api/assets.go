package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/store"
)

var assetContentTypePrefix = map[store.AssetKind]string{
	store.AssetKindVideo:    "video/",
	store.AssetKindAudio:    "audio/",
	store.AssetKindSubtitle: "text/",
}

// uploadAsset validates kind/content-type, streams the multipart file to a
// tmp path with per-chunk size accounting against MaxUploadBytes (413 when
// exceeded before the body is fully consumed), then registers it as a
// MediaAsset.
func (s *Server) uploadAsset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	kind := store.AssetKind(r.FormValue("kind"))
	prefix, ok := assetContentTypePrefix[kind]
	if !ok {
		errors.WriteHTTPValidationError(w, fmt.Sprintf("kind must be one of video, audio, subtitle; got %q", kind), nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteHTTPValidationError(w, "missing file field", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, prefix) {
		errors.WriteHTTPValidationError(w, fmt.Sprintf("content-type %q does not match kind %q", contentType, kind), nil)
		return
	}

	tmpDir := filepath.Join(s.MediaRoot, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		errors.WriteHTTPInternalServerError(w, "failed to prepare upload staging", err)
		return
	}
	id := uuid.NewString()
	ext := filepath.Ext(header.Filename)
	stagePath := filepath.Join(tmpDir, id+ext)

	if _, err := copyWithLimit(stagePath, file, s.MaxUploadBytes); err != nil {
		os.Remove(stagePath)
		if err == errUploadTooLarge {
			errors.WriteHTTPPayloadTooLarge(w, fmt.Sprintf("upload exceeds max_upload_bytes (%d)", s.MaxUploadBytes))
			return
		}
		errors.WriteHTTPInternalServerError(w, "failed to stage upload", err)
		return
	}

	uri, err := s.Backend.WriteFile("tmp", id+ext, stagePath, contentType)
	os.Remove(stagePath)
	if err != nil {
		errors.WriteHTTPInternalServerError(w, "failed to store asset", err)
		return
	}

	asset, err := s.Store.CreateAsset(store.MediaAsset{ID: id, Kind: kind, URI: uri, MimeType: contentType})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

var errUploadTooLarge = fmt.Errorf("upload exceeds max_upload_bytes")

// copyWithLimit copies src to destPath, failing with errUploadTooLarge as
// soon as more than maxBytes has been read (per-chunk accounting rather
// than trusting Content-Length, which a client can lie about).
func copyWithLimit(destPath string, src io.Reader, maxBytes int64) (int64, error) {
	out, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	limited := io.LimitReader(src, maxBytes+1)
	n, err := io.Copy(out, limited)
	if err != nil {
		return n, err
	}
	if n > maxBytes {
		return n, errUploadTooLarge
	}
	return n, nil
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	assets, err := s.Store.ListAssets()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, err := s.Store.GetAsset(ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if _, err := s.Store.GetAsset(id); err != nil {
		writeStoreError(w, err)
		return
	}
	referenced, err := s.Store.AssetReferenced(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if referenced {
		errors.WriteHTTPConflict(w, "asset is referenced by a job")
		return
	}
	if err := s.Store.DeleteAsset(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) downloadAsset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, err := s.Store.GetAsset(ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	path, err := s.Backend.ResolveLocalPath(asset.URI)
	if err != nil {
		// Remote-backed assets are served via a redirect to their download URL.
		url, urlErr := s.Backend.GetDownloadURL(asset.URI, true)
		if urlErr != nil {
			errors.WriteHTTPInternalServerError(w, "failed to resolve asset location", urlErr)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	if asset.MimeType != "" {
		w.Header().Set("Content-Type", asset.MimeType)
	} else if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFile(w, r, path)
}

func (s *Server) downloadAssetURL(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, err := s.Store.GetAsset(ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	presign, _ := strconv.ParseBool(r.URL.Query().Get("presign"))
	url, err := s.Backend.GetDownloadURL(asset.URI, presign)
	if err != nil {
		errors.WriteHTTPInternalServerError(w, "failed to build download url", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
