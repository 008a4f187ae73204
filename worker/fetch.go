package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/livepeer/reframe-media/storage"
	"github.com/livepeer/reframe-media/store"
)

// FetchedAsset is a local filesystem path for an asset plus a cleanup
// function. For a local-backend asset the path is the backend's own file
// and cleanup is a no-op; for a remote asset it's a downloaded temp copy
// that cleanup removes.
type FetchedAsset struct {
	Path    string
	cleanup func()
}

func (f FetchedAsset) Cleanup() {
	if f.cleanup != nil {
		f.cleanup()
	}
}

// FetchAsset resolves a MediaAsset to a local path, downloading it to
// {mediaRoot}/tmp first when its URI is remote (spec §4.5 step 2). It is
// exported so the API package's bundle export can reuse the same remote
// fetch path the worker pipelines use.
func FetchAsset(ctx context.Context, backend storage.Backend, httpClient *retryablehttp.Client, mediaRoot string, asset store.MediaAsset) (FetchedAsset, error) {
	if !storage.IsRemoteURI(asset.URI) {
		path, err := backend.ResolveLocalPath(asset.URI)
		if err != nil {
			return FetchedAsset{}, fmt.Errorf("resolving local path for asset %s: %w", asset.ID, err)
		}
		return FetchedAsset{Path: path}, nil
	}

	if !strings.HasPrefix(asset.URI, "http://") && !strings.HasPrefix(asset.URI, "https://") {
		return FetchedAsset{}, fmt.Errorf("cannot fetch non-HTTP remote asset %s (%s) inline; worker expects a presigned HTTPS URI", asset.ID, asset.URI)
	}

	tmpDir := filepath.Join(mediaRoot, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return FetchedAsset{}, fmt.Errorf("creating tmp dir: %w", err)
	}

	destPath := filepath.Join(tmpDir, uuid.NewString()+filepath.Ext(asset.URI))
	if err := downloadToFile(ctx, httpClient, asset.URI, destPath); err != nil {
		return FetchedAsset{}, err
	}

	return FetchedAsset{
		Path:    destPath,
		cleanup: func() { _ = os.Remove(destPath) },
	}, nil
}

func downloadToFile(ctx context.Context, client *retryablehttp.Client, url, destPath string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building download request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating download destination %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing downloaded asset to %s: %w", destPath, err)
	}
	return nil
}

// NewDownloadClient builds the retryablehttp client used for remote asset
// fetch: up to 3 retries, waiting 500ms to 5s between attempts.
func NewDownloadClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.Logger = nil
	return c
}
