package api

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/sync/errgroup"

	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/store"
	"github.com/livepeer/reframe-media/worker"
)

// bundleJob streams a zip of job.json, error.txt (if the job failed),
// input/output asset files, and for shorts jobs an upload_package.json with
// per-clip suggested title/description/tags, per spec §4.4.
func (s *Server) bundleJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	job, err := s.Store.GetJob(ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	assetIDs := map[string]bool{}
	if job.InputAssetID != "" {
		assetIDs[job.InputAssetID] = true
	}
	if job.OutputAssetID != "" {
		assetIDs[job.OutputAssetID] = true
	}

	var manifest shortsManifest
	haveManifest := false
	if job.JobType == store.JobTypeShorts && job.OutputAssetID != "" {
		if m, err := s.loadShortsManifest(r.Context(), job.OutputAssetID); err == nil {
			manifest = m
			haveManifest = true
			for _, c := range manifest.Clips {
				assetIDs[c.AssetID] = true
				if c.ThumbnailID != "" {
					assetIDs[c.ThumbnailID] = true
				}
			}
		}
	}

	ids := make([]string, 0, len(assetIDs))
	for id := range assetIDs {
		ids = append(ids, id)
	}
	paths, err := s.fetchAssetsForBundle(r.Context(), ids)
	if err != nil {
		errors.WriteHTTPInternalServerError(w, "failed to fetch assets for bundle", err)
		return
	}
	for _, f := range paths {
		defer os.Remove(f.tmpPath)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "job-"+job.ID+".zip"))

	zw := zip.NewWriter(w)
	defer zw.Close()

	jobJSON, _ := json.MarshalIndent(job, "", "  ")
	writeZipEntry(zw, "job.json", jobJSON)

	if job.Error != "" {
		writeZipEntry(zw, "error.txt", []byte(job.Error))
	}

	for id, f := range paths {
		data, err := os.ReadFile(f.tmpPath)
		if err != nil {
			continue
		}
		writeZipEntry(zw, "assets/"+id+f.ext, data)
	}

	if haveManifest {
		pkg := buildUploadPackage(manifest)
		pkgJSON, _ := json.MarshalIndent(pkg, "", "  ")
		writeZipEntry(zw, "upload_package.json", pkgJSON)
	}
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) {
	f, err := zw.Create(name)
	if err != nil {
		return
	}
	_, _ = f.Write(data)
}

type bundleAssetFile struct {
	tmpPath string
	ext     string
}

// fetchAssetsForBundle resolves every asset id to a local file in parallel,
// reusing the worker package's remote-download client for assets stored on
// a non-local backend.
func (s *Server) fetchAssetsForBundle(ctx context.Context, ids []string) (map[string]bundleAssetFile, error) {
	results := make(map[string]bundleAssetFile, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			asset, err := s.Store.GetAsset(id)
			if err != nil {
				return err
			}
			fetched, err := worker.FetchAsset(ctx, s.Backend, s.downloadClient(), s.MediaRoot, asset)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = bundleAssetFile{tmpPath: fetched.Path, ext: extFor(asset.MimeType)}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extFor(mimeType string) string {
	switch mimeType {
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "image/png":
		return ".png"
	case "application/json":
		return ".json"
	case "text/plain":
		return ".srt"
	default:
		return ""
	}
}

type shortsManifest struct {
	SourceAssetID string            `json:"source_asset_id"`
	AspectRatio   string            `json:"aspect_ratio"`
	Clips         []shortsManifestClip `json:"clips"`
}

type shortsManifestClip struct {
	AssetID     string  `json:"asset_id"`
	ThumbnailID string  `json:"thumbnail_asset_id,omitempty"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

func (s *Server) loadShortsManifest(ctx context.Context, manifestAssetID string) (shortsManifest, error) {
	asset, err := s.Store.GetAsset(manifestAssetID)
	if err != nil {
		return shortsManifest{}, err
	}
	fetched, err := worker.FetchAsset(ctx, s.Backend, s.downloadClient(), s.MediaRoot, asset)
	if err != nil {
		return shortsManifest{}, err
	}
	defer os.Remove(fetched.Path)

	raw, err := os.ReadFile(fetched.Path)
	if err != nil {
		return shortsManifest{}, err
	}
	var m shortsManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return shortsManifest{}, err
	}
	return m, nil
}

type uploadPackageClip struct {
	AssetID     string   `json:"asset_id"`
	ThumbnailID string   `json:"thumbnail_asset_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
}

type uploadPackage struct {
	SourceAssetID string              `json:"source_asset_id"`
	Clips         []uploadPackageClip `json:"clips"`
}

func buildUploadPackage(m shortsManifest) uploadPackage {
	pkg := uploadPackage{SourceAssetID: m.SourceAssetID, Clips: make([]uploadPackageClip, 0, len(m.Clips))}
	for i, c := range m.Clips {
		pkg.Clips = append(pkg.Clips, uploadPackageClip{
			AssetID:     c.AssetID,
			ThumbnailID: c.ThumbnailID,
			Title:       fmt.Sprintf("Clip %d", i+1),
			Description: c.Reason,
			Tags:        config.DefaultBundleTags,
			Start:       c.Start,
			End:         c.End,
		})
	}
	return pkg
}
