package worker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/jobs"
	"github.com/livepeer/reframe-media/media/ffmpegcmd"
	"github.com/livepeer/reframe-media/store"
)

func (p *Pool) handleCutClip(ctx context.Context, task broker.Task, publish func(broker.Event)) error {
	return p.run(ctx, task, publish, p.runCutClip)
}

func (p *Pool) runCutClip(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (string, map[string]interface{}, error) {
	opts, err := jobs.DecodeCutClipOptions(job)
	if err != nil {
		return "", nil, err
	}

	if err := checkpoint(p.cfg.Store, job.ID); err != nil {
		return "", nil, err
	}

	_, video, err := p.fetchAsset(ctx, opts.VideoAssetID)
	if err != nil {
		return "", nil, err
	}
	defer video.Cleanup()

	info, err := ffmpegcmd.ProbeMedia(ctx, video.Path)
	if err != nil {
		return "", nil, fmt.Errorf("probing clip source failed: %w", err)
	}
	if opts.End > info.Duration {
		opts.End = info.Duration
	}

	outPath := filepath.Join(workDir, "clip.mp4")
	err = withRetry(p.cfg.Store, job.ID, "cut_clip", p.cfg.Retry, func() error {
		return ffmpegcmd.CutClip(ctx, p.cfg.FfmpegRunner, video.Path, opts.Start, opts.End, outPath)
	})
	if err != nil {
		return "", nil, fmt.Errorf("cutting clip failed: %w", err)
	}

	asset, err := publishAsset(p.cfg.Store, p.cfg.Backend, store.AssetKindVideo, outPath, ".mp4", "video/mp4", nil)
	if err != nil {
		return "", nil, err
	}
	return asset.ID, nil, nil
}
