package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/jobs"
	"github.com/livepeer/reframe-media/media/ffmpegcmd"
	"github.com/livepeer/reframe-media/media/subtitles"
	"github.com/livepeer/reframe-media/store"
)

func (p *Pool) handleStyleSubtitles(ctx context.Context, task broker.Task, publish func(broker.Event)) error {
	return p.run(ctx, task, publish, p.runStyleSubtitles)
}

func (p *Pool) runStyleSubtitles(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (string, map[string]interface{}, error) {
	opts, err := jobs.DecodeStyleSubtitlesOptions(job)
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

	_, subtitleAsset, err := p.fetchAsset(ctx, opts.SubtitleAssetID)
	if err != nil {
		return "", nil, err
	}
	defer subtitleAsset.Cleanup()

	assPath, err := karaokeASSPath(subtitleAsset.Path, workDir)
	if err != nil {
		return "", nil, err
	}

	if err := checkpoint(p.cfg.Store, job.ID); err != nil {
		return "", nil, err
	}

	outPath := filepath.Join(workDir, "styled.mp4")
	err = withRetry(p.cfg.Store, job.ID, "burn_subtitles", p.cfg.Retry, func() error {
		return ffmpegcmd.BurnStyledSubtitles(ctx, p.cfg.FfmpegRunner, video.Path, assPath, outPath, opts.Style, opts.PreviewSeconds)
	})
	if err != nil {
		return "", nil, fmt.Errorf("burning styled subtitles failed: %w", err)
	}

	asset, err := publishAsset(p.cfg.Store, p.cfg.Backend, store.AssetKindVideo, outPath, ".mp4", "video/mp4", nil)
	if err != nil {
		return "", nil, err
	}
	return asset.ID, nil, nil
}

// karaokeASSPath produces a .ass file for the burn-in step: an .ass input
// is used as-is, everything else (srt/vtt) is parsed and re-emitted as
// karaoke ASS into a temp file under workDir (spec §4.5's style_subtitles
// rule).
func karaokeASSPath(subtitlePath, workDir string) (string, error) {
	if strings.ToLower(filepath.Ext(subtitlePath)) == ".ass" {
		return subtitlePath, nil
	}

	raw, err := os.ReadFile(subtitlePath)
	if err != nil {
		return "", fmt.Errorf("reading subtitle asset: %w", err)
	}

	var lines []subtitles.Line
	switch strings.ToLower(filepath.Ext(subtitlePath)) {
	case ".vtt":
		lines, err = subtitles.ParseVTT(string(raw))
	case ".srt":
		lines, err = subtitles.ParseSRT(string(raw))
	default:
		return "", fmt.Errorf("style_subtitles only accepts .srt/.vtt/.ass input, got %q", subtitlePath)
	}
	if err != nil {
		return "", fmt.Errorf("parsing subtitle asset: %w", err)
	}

	assPath := filepath.Join(workDir, "karaoke.ass")
	if err := os.WriteFile(assPath, []byte(subtitles.ToASSKaraoke(lines)), 0o644); err != nil {
		return "", fmt.Errorf("writing karaoke ass: %w", err)
	}
	return assPath, nil
}
