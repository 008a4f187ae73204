package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/log"
	"github.com/livepeer/reframe-media/metrics"
	"github.com/livepeer/reframe-media/store"
)

// CleanupLoop periodically deletes scratch files under {mediaRoot}/tmp
// older than ttl, skipping anything still referenced by a MediaAsset row
// (spec §5's shared-resource policy). Best-effort and crash-safe: a failed
// individual delete or list is logged and the loop continues.
type CleanupLoop struct {
	store     *store.Store
	mediaRoot string
	ttl       time.Duration
	interval  time.Duration
}

func NewCleanupLoop(s *store.Store, mediaRoot string, ttl, interval time.Duration) *CleanupLoop {
	if ttl <= 0 {
		ttl = config.DefaultTmpTTL
	}
	if interval <= 0 {
		interval = config.DefaultTmpCleanupInterval
	}
	return &CleanupLoop{store: s, mediaRoot: mediaRoot, ttl: ttl, interval: interval}
}

// Run blocks, sweeping every interval until ctx is cancelled.
func (c *CleanupLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *CleanupLoop) sweep() {
	tmpDir := filepath.Join(c.mediaRoot, "tmp")
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.LogNoRequestID("cleanup: failed to list tmp dir", "dir", tmpDir, "err", err)
		}
		return
	}

	cutoff := time.Now().Add(-c.ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(tmpDir, entry.Name())
		assetID := assetIDFromTmpPath(path)
		if _, err := c.store.GetAsset(assetID); err == nil {
			continue
		} else if apiErr, ok := err.(errors.APIError); !ok || apiErr.Code != errors.CodeNotFound {
			log.LogNoRequestID("cleanup: failed to look up asset", "path", path, "err", err)
			continue
		}
		referenced, err := c.store.AssetReferenced(assetID)
		if err != nil {
			log.LogNoRequestID("cleanup: failed to check asset reference", "path", path, "err", err)
			continue
		}
		if referenced {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.LogNoRequestID("cleanup: failed to remove stale tmp file", "path", path, "err", err)
			continue
		}
		metrics.Metrics.TmpFilesCleaned.Inc()
	}
}

// assetIDFromTmpPath derives the candidate asset id a tmp file would be
// registered under, matching the `{media_root}/tmp/<uuid><ext>` naming
// convention from spec §6.4 (the asset's URI embeds this same filename).
func assetIDFromTmpPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
