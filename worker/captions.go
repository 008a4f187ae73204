package worker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/jobs"
	"github.com/livepeer/reframe-media/media/diarize"
	"github.com/livepeer/reframe-media/media/ffmpegcmd"
	"github.com/livepeer/reframe-media/media/subtitles"
	"github.com/livepeer/reframe-media/media/transcribe"
	"github.com/livepeer/reframe-media/store"
)

func (p *Pool) handleCaptions(ctx context.Context, task broker.Task, publish func(broker.Event)) error {
	return p.run(ctx, task, publish, p.runCaptions)
}

func (p *Pool) runCaptions(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (string, map[string]interface{}, error) {
	opts, err := jobs.DecodeCaptionsOptions(job)
	if err != nil {
		return "", nil, err
	}

	if err := checkpoint(p.cfg.Store, job.ID); err != nil {
		return "", nil, err
	}

	if p.cfg.OfflineMode && transcribeBackendIsRemote(p.cfg.TranscribeBackend) {
		return "", nil, errors.NewValidationError(fmt.Sprintf("transcription backend %q requires network access, refused under OFFLINE_MODE", p.cfg.TranscribeBackend), nil)
	}

	_, video, err := p.fetchAsset(ctx, opts.VideoAssetID)
	if err != nil {
		return "", nil, err
	}
	defer video.Cleanup()

	var warnings []string
	transcriber := transcribe.Dispatch(p.cfg.TranscribeBackend, p.cfg.TranscribeSidecarURL)
	var result transcribe.TranscriptionResult
	err = withRetry(p.cfg.Store, job.ID, "transcribe", p.cfg.Retry, func() error {
		var transcribeErr error
		result, transcribeErr = transcriber.Transcribe(ctx, video.Path, opts.Model)
		return transcribeErr
	})
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("transcription backend %q failed, falling back to noop: %v", p.cfg.TranscribeBackend, err))
		result, err = transcribe.NoopTranscriber{}.Transcribe(ctx, video.Path, opts.Model)
		if err != nil {
			return "", nil, fmt.Errorf("noop transcription fallback failed: %w", err)
		}
	}
	if err := reporter.Report(0.4, map[string]interface{}{"stage": "transcribed"}); err != nil {
		return "", nil, err
	}

	lines := subtitles.GroupWords(result.Words, subtitles.DefaultGroupingConfig())

	if opts.SpeakerLabels && p.cfg.Diarize.Backend != diarize.BackendNoop && p.cfg.Diarize.Backend != "" {
		if p.cfg.OfflineMode && diarizeBackendIsRemote(p.cfg.Diarize.Backend) {
			return "", nil, errors.NewValidationError(fmt.Sprintf("diarization backend %q requires network access, refused under OFFLINE_MODE", p.cfg.Diarize.Backend), nil)
		}

		if err := checkpoint(p.cfg.Store, job.ID); err != nil {
			return "", nil, err
		}

		pcmPath := filepath.Join(workDir, "diarize.wav")
		if err := ffmpegcmd.ExtractAudioPCM16kMono(ctx, p.cfg.FfmpegRunner, video.Path, pcmPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("speaker diarization skipped: audio extraction failed: %v", err))
		} else {
			segments, diarizeErr := diarize.Dispatch(ctx, pcmPath, p.cfg.Diarize)
			if diarizeErr != nil {
				warnings = append(warnings, fmt.Sprintf("speaker diarization failed: %v", diarizeErr))
			} else {
				lines = diarize.AssignSpeakersToLines(lines, segments)
			}
		}

		if err := reporter.Report(0.7, map[string]interface{}{"stage": "diarized"}); err != nil {
			return "", nil, err
		}
	}

	serialized, ext, mimeType, err := serializeSubtitles(lines, opts.Format)
	if err != nil {
		return "", nil, err
	}

	asset, err := publishBytes(p.cfg.Store, p.cfg.Backend, store.AssetKindSubtitle, []byte(serialized), ext, mimeType, nil)
	if err != nil {
		return "", nil, err
	}

	payload := map[string]interface{}{}
	if len(warnings) > 0 {
		payload["warnings"] = toInterfaceSlice(warnings)
	}
	return asset.ID, payload, nil
}

func serializeSubtitles(lines []subtitles.Line, format string) (text, ext, mimeType string, err error) {
	switch format {
	case "", "srt":
		return subtitles.ToSRT(lines), ".srt", "application/x-subrip", nil
	case "vtt":
		return subtitles.ToVTT(lines), ".vtt", "text/vtt", nil
	case "ass":
		return subtitles.ToASS(lines), ".ass", "text/x-ssa", nil
	case "ass_karaoke":
		return subtitles.ToASSKaraoke(lines), ".ass", "text/x-ssa", nil
	default:
		return "", "", "", fmt.Errorf("unsupported caption format %q", format)
	}
}

func toInterfaceSlice(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
