package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/jobs"
	"github.com/livepeer/reframe-media/media/subtitles"
	"github.com/livepeer/reframe-media/media/translate"
	"github.com/livepeer/reframe-media/store"
)

func (p *Pool) handleTranslateSubtitles(ctx context.Context, task broker.Task, publish func(broker.Event)) error {
	return p.run(ctx, task, publish, p.runTranslateSubtitles)
}

func (p *Pool) runTranslateSubtitles(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (string, map[string]interface{}, error) {
	opts, err := jobs.DecodeTranslateSubtitlesOptions(job)
	if err != nil {
		return "", nil, err
	}

	if err := checkpoint(p.cfg.Store, job.ID); err != nil {
		return "", nil, err
	}

	_, subtitleAsset, err := p.fetchAsset(ctx, opts.SubtitleAssetID)
	if err != nil {
		return "", nil, err
	}
	defer subtitleAsset.Cleanup()

	raw, err := os.ReadFile(subtitleAsset.Path)
	if err != nil {
		return "", nil, fmt.Errorf("reading subtitle asset: %w", err)
	}

	srtText, err := toSRTDomain(string(raw), subtitleAsset.Path)
	if err != nil {
		return "", nil, err
	}

	translator := p.cfg.Translator
	var warnings []string
	if translator == nil {
		if p.cfg.OfflineMode {
			return "", nil, errors.NewValidationError("local translator requires network access, refused under OFFLINE_MODE", nil)
		}
		localTranslator := translate.NewLocalTranslator()
		if pingErr := pingTranslator(ctx, localTranslator, opts.SourceLanguage, opts.TargetLanguage); pingErr != nil {
			warnings = append(warnings, fmt.Sprintf("local translator unavailable, falling back to identity: %v", pingErr))
			translator = translate.NoOpTranslator{}
		} else {
			translator = localTranslator
		}
	}

	var translated string
	if opts.Bilingual {
		translated, err = translate.TranslateSRTBilingual(ctx, srtText, translator, opts.SourceLanguage, opts.TargetLanguage, "")
	} else {
		translated, err = translate.TranslateSRT(ctx, srtText, translator, opts.SourceLanguage, opts.TargetLanguage)
	}
	if err != nil {
		return "", nil, fmt.Errorf("translation failed: %w", err)
	}

	asset, err := publishBytes(p.cfg.Store, p.cfg.Backend, store.AssetKindSubtitle, []byte(translated), ".srt", "application/x-subrip", nil)
	if err != nil {
		return "", nil, err
	}

	payload := map[string]interface{}{}
	if len(warnings) > 0 {
		payload["warnings"] = toInterfaceSlice(warnings)
	}
	return asset.ID, payload, nil
}

// toSRTDomain parses the subtitle asset per spec's "only accepts .srt/.vtt
// (VTT is pre-converted to SRT line domain)" rule and re-emits it as
// canonical SRT text for the translator to operate on.
func toSRTDomain(text, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		lines, err := subtitles.ParseVTT(text)
		if err != nil {
			return "", fmt.Errorf("parsing vtt subtitle asset: %w", err)
		}
		return subtitles.ToSRT(lines), nil
	case ".srt":
		return text, nil
	default:
		return "", fmt.Errorf("translate_subtitles only accepts .srt/.vtt input, got %q", path)
	}
}

func pingTranslator(ctx context.Context, t *translate.LocalTranslator, src, tgt string) error {
	_, err := t.TranslateBatch(ctx, []string{""}, src, tgt)
	return err
}
