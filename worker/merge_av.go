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

func (p *Pool) handleMergeAV(ctx context.Context, task broker.Task, publish func(broker.Event)) error {
	return p.run(ctx, task, publish, p.runMergeAV)
}

func (p *Pool) runMergeAV(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (string, map[string]interface{}, error) {
	opts, err := jobs.DecodeMergeAVOptions(job)
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

	_, audio, err := p.fetchAsset(ctx, opts.AudioAssetID)
	if err != nil {
		return "", nil, err
	}
	defer audio.Cleanup()

	info, err := ffmpegcmd.ProbeMedia(ctx, video.Path)
	if err != nil {
		return "", nil, fmt.Errorf("probing source video: %w", err)
	}

	if err := checkpoint(p.cfg.Store, job.ID); err != nil {
		return "", nil, err
	}

	mergeOpts := ffmpegcmd.MergeOptions{
		Offset:        opts.Offset,
		Ducking:       opts.DuckingValue(ffmpegcmd.DuckingVolume),
		Normalize:     opts.Normalize,
		VideoHasAudio: len(info.AudioCodecs) > 0,
	}

	outPath := filepath.Join(workDir, "merged.mp4")
	err = withRetry(p.cfg.Store, job.ID, "merge_av", p.cfg.Retry, func() error {
		return ffmpegcmd.MergeVideoAudio(ctx, p.cfg.FfmpegRunner, video.Path, audio.Path, outPath, mergeOpts)
	})
	if err != nil {
		return "", nil, fmt.Errorf("merging video/audio failed: %w", err)
	}

	asset, err := publishAsset(p.cfg.Store, p.cfg.Backend, store.AssetKindVideo, outPath, ".mp4", "video/mp4", nil)
	if err != nil {
		return "", nil, err
	}
	return asset.ID, nil, nil
}
