package translate

import (
	"context"
	"fmt"

	"github.com/livepeer/reframe-media/media/subtitles"
	"github.com/livepeer/reframe-media/media/transcribe"
)

// TranslateSRT parses srtText, translates each line's text, and re-emits it
// as SRT with each line's original words replaced by a single synthetic
// word carrying the translated text.
func TranslateSRT(ctx context.Context, srtText string, translator Translator, src, tgt string) (string, error) {
	lines, err := subtitles.ParseSRT(srtText)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text()
	}

	translated, err := translator.TranslateBatch(ctx, texts, src, tgt)
	if err != nil {
		return "", err
	}
	if len(translated) != len(lines) {
		return "", fmt.Errorf("translator returned %d lines for %d inputs", len(translated), len(lines))
	}

	out := make([]subtitles.Line, len(lines))
	for i, l := range lines {
		out[i] = subtitles.Line{
			Start:   l.Start,
			End:     l.End,
			Speaker: l.Speaker,
			Words:   []transcribe.Word{{Text: translated[i], Start: l.Start, End: l.End}},
		}
	}
	return subtitles.ToSRT(out), nil
}

// TranslateSRTBilingual is like TranslateSRT but each output line carries
// both the original and translated text, joined by separator (defaults to
// the ASS/SRT line break "\N" when empty).
func TranslateSRTBilingual(ctx context.Context, srtText string, translator Translator, src, tgt, separator string) (string, error) {
	if separator == "" {
		separator = `\N`
	}

	lines, err := subtitles.ParseSRT(srtText)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text()
	}

	translated, err := translator.TranslateBatch(ctx, texts, src, tgt)
	if err != nil {
		return "", err
	}
	if len(translated) != len(lines) {
		return "", fmt.Errorf("translator returned %d lines for %d inputs", len(translated), len(lines))
	}

	out := make([]subtitles.Line, len(lines))
	for i, l := range lines {
		combined := l.Text() + separator + translated[i]
		out[i] = subtitles.Line{
			Start:   l.Start,
			End:     l.End,
			Speaker: l.Speaker,
			Words:   []transcribe.Word{{Text: combined, Start: l.Start, End: l.End}},
		}
	}
	return subtitles.ToSRT(out), nil
}
