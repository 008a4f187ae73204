package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/jobs"
	"github.com/livepeer/reframe-media/log"
	"github.com/livepeer/reframe-media/media/ffmpegcmd"
	"github.com/livepeer/reframe-media/media/shorts"
	"github.com/livepeer/reframe-media/store"
)

func (p *Pool) handleShorts(ctx context.Context, task broker.Task, publish func(broker.Event)) error {
	return p.run(ctx, task, publish, p.runShorts)
}

// shortsClip describes one selected+published segment for the job's output
// manifest.
type shortsClip struct {
	AssetID        string  `json:"asset_id"`
	ThumbnailID    string  `json:"thumbnail_asset_id,omitempty"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

func (p *Pool) runShorts(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (string, map[string]interface{}, error) {
	opts, err := jobs.DecodeShortsOptions(job)
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
		return "", nil, fmt.Errorf("probing source video: %w", err)
	}

	candidates := shorts.EqualSplits(info.Duration, opts.MaxDuration)
	for i := range candidates {
		candidates[i].Score = 1.0 - 0.01*float64(i)
	}
	if len(opts.Keywords) > 0 {
		candidates = shorts.ScoreByKeywords(candidates, opts.Keywords)
	}

	var warnings []string
	if opts.TrimSilence {
		if silent, silErr := ffmpegcmd.DetectSilence(ctx, p.cfg.FfmpegRunner, video.Path); silErr != nil {
			warnings = append(warnings, fmt.Sprintf("silence detection failed, skipping trim: %v", silErr))
		} else {
			candidates = penalizeSilenceCoverage(candidates, silent)
		}
	}

	selected := shorts.SelectTop(candidates, shorts.SelectOptions{
		MaxSegments: opts.MaxClips,
		MinDuration: opts.MinDuration,
		MaxDuration: opts.MaxDuration,
	})
	if len(selected) == 0 {
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
		n := opts.MaxClips
		if n > len(candidates) {
			n = len(candidates)
		}
		selected = candidates[:n]
		if len(selected) > 0 {
			warnings = append(warnings, "selector returned no segments meeting constraints; falling back to top-scored candidates")
		}
	}

	if err := checkpoint(p.cfg.Store, job.ID); err != nil {
		return "", nil, err
	}

	clips := make([]shortsClip, 0, len(selected))
	for i, seg := range selected {
		clip, clipErr := p.renderShortsClip(ctx, video.Path, workDir, opts, seg, i)
		if clipErr != nil {
			warnings = append(warnings, fmt.Sprintf("segment %d (%.1fs-%.1fs) failed: %v", i, seg.Start, seg.End, clipErr))
			continue
		}
		clips = append(clips, clip)
		if err := reporter.Report(0.2+0.6*float64(i+1)/float64(len(selected)), nil); err != nil {
			return "", nil, err
		}
	}

	manifest, err := json.MarshalIndent(map[string]interface{}{
		"source_asset_id": opts.VideoAssetID,
		"aspect_ratio":    opts.AspectRatio,
		"clips":           clips,
	}, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("marshaling shorts manifest: %w", err)
	}

	manifestAsset, err := publishBytes(p.cfg.Store, p.cfg.Backend, store.AssetKindShortsManifest, manifest, ".json", "application/json", nil)
	if err != nil {
		return "", nil, err
	}

	clipAssetIDs := make([]string, 0, len(clips)*2)
	for _, c := range clips {
		clipAssetIDs = append(clipAssetIDs, c.AssetID)
		if c.ThumbnailID != "" {
			clipAssetIDs = append(clipAssetIDs, c.ThumbnailID)
		}
	}
	payload := map[string]interface{}{
		"clip_count":  len(clips),
		"clip_assets": toInterfaceSlice(clipAssetIDs),
	}
	if len(warnings) > 0 {
		payload["warnings"] = toInterfaceSlice(warnings)
	}
	return manifestAsset.ID, payload, nil
}

// renderShortsClip cuts, reframes, and thumbnails a single candidate
// segment, publishing both as assets.
func (p *Pool) renderShortsClip(ctx context.Context, videoPath, workDir string, opts jobs.ShortsOptions, seg shorts.SegmentCandidate, index int) (shortsClip, error) {
	cutPath := filepath.Join(workDir, fmt.Sprintf("clip-%d-cut.mp4", index))
	if err := ffmpegcmd.CutClip(ctx, p.cfg.FfmpegRunner, videoPath, seg.Start, seg.End, cutPath); err != nil {
		return shortsClip{}, fmt.Errorf("cutting clip: %w", err)
	}

	reframedPath := cutPath
	if opts.AspectRatio != "" {
		reframedPath = filepath.Join(workDir, fmt.Sprintf("clip-%d-reframed.mp4", index))
		if err := ffmpegcmd.Reframe(ctx, p.cfg.FfmpegRunner, cutPath, reframedPath, opts.AspectRatio, ffmpegcmd.StrategyBlurBg); err != nil {
			log.LogNoRequestID("reframe failed, publishing unreframed clip", "index", index, "error", err)
			reframedPath = cutPath
		}
	}

	asset, err := publishAsset(p.cfg.Store, p.cfg.Backend, store.AssetKindVideo, reframedPath, ".mp4", "video/mp4", nil)
	if err != nil {
		return shortsClip{}, err
	}

	clip := shortsClip{AssetID: asset.ID, Start: seg.Start, End: seg.End, Score: seg.Score, Reason: seg.Reason}

	thumbPath := filepath.Join(workDir, fmt.Sprintf("clip-%d-thumb.png", index))
	if err := ffmpegcmd.Thumbnail(ctx, p.cfg.FfmpegRunner, reframedPath, thumbPath, 0.5, 320); err != nil {
		log.LogNoRequestID("thumbnail generation failed, publishing fallback", "index", index, "error", err)
		thumbAsset, fallbackErr := publishBytes(p.cfg.Store, p.cfg.Backend, store.AssetKindImage, fallbackThumbnailPNG, ".png", "image/png", nil)
		if fallbackErr == nil {
			clip.ThumbnailID = thumbAsset.ID
		}
		return clip, nil
	}
	thumbAsset, err := publishAsset(p.cfg.Store, p.cfg.Backend, store.AssetKindImage, thumbPath, ".png", "image/png", nil)
	if err == nil {
		clip.ThumbnailID = thumbAsset.ID
	}
	return clip, nil
}

// penalizeSilenceCoverage docks a candidate's score by 0.5*coverage when
// more than half its duration is detected silence, per the trim_silence
// option's selection rule. It never mutates Start/End: silence is a signal
// SelectTop weighs against other candidates, not a boundary to cut to.
func penalizeSilenceCoverage(candidates []shorts.SegmentCandidate, silence []ffmpegcmd.SilenceInterval) []shorts.SegmentCandidate {
	out := make([]shorts.SegmentCandidate, len(candidates))
	copy(out, candidates)
	for i, c := range out {
		if coverage := silenceCoverageRatio(c, silence); coverage > 0.5 {
			out[i].Score -= 0.5 * coverage
		}
	}
	return out
}

// silenceCoverageRatio is the fraction of c's duration overlapped by any
// detected silence interval.
func silenceCoverageRatio(c shorts.SegmentCandidate, silence []ffmpegcmd.SilenceInterval) float64 {
	duration := c.Duration()
	if duration <= 0 {
		return 0
	}
	var covered float64
	for _, s := range silence {
		start := math.Max(c.Start, s.Start)
		end := math.Min(c.End, s.End)
		if end > start {
			covered += end - start
		}
	}
	return covered / duration
}

// fallbackThumbnailPNG is a 1x1 transparent PNG used when ffmpeg frame
// extraction fails, so the manifest always has a thumbnail asset.
var fallbackThumbnailPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
