package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend is the tagged-variant transcription backend identifier.
type Backend string

const (
	BackendOpenAIWhisper       Backend = "openai_whisper"
	BackendFasterWhisper       Backend = "faster_whisper"
	BackendWhisperCPP          Backend = "whisper_cpp"
	BackendWhisperTimestamped  Backend = "whisper_timestamped"
	BackendNoop                Backend = "noop"
)

// modelAliases normalizes vendor-specific model names to a canonical form,
// e.g. "whisper-large-v3" -> "large-v3".
var modelAliases = map[string]string{
	"whisper-large-v3":  "large-v3",
	"whisper-large-v2":  "large-v2",
	"whisper-medium.en": "medium.en",
	"whisper-base.en":   "base.en",
}

func NormalizeModelName(name string) string {
	if canonical, ok := modelAliases[name]; ok {
		return canonical
	}
	return name
}

// Transcriber runs a transcription backend against a media file and
// produces a TranscriptionResult.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string, model string) (TranscriptionResult, error)
}

// NoopTranscriber is the safe, offline-capable fallback: it returns a
// single synthetic word spanning the file's name, used when a real backend
// fails or OFFLINE_MODE forbids it.
type NoopTranscriber struct{}

func (NoopTranscriber) Transcribe(ctx context.Context, mediaPath string, model string) (TranscriptionResult, error) {
	word := Word{Text: filepath.Base(mediaPath), Start: 0, End: 1}
	return FromIterable([]Word{word}, "noop", "")
}

// RawSegment is the vendor-agnostic shape a backend's raw output is
// normalized from: segments may arrive as dicts or vendor objects, but by
// the time they reach Normalize they're shaped into this struct.
type RawSegment struct {
	Text  string
	Start float64
	End   float64
	Words []RawWord
}

type RawWord struct {
	Text        string
	Start       float64
	End         float64
	Probability *float64
}

// Normalize adapts raw vendor segments into a TranscriptionResult. Per the
// normalization contract: malformed words are discarded, words are NOT
// sorted here (the caller/validation layer enforces order), and the full
// text is the space-joined, trimmed segment texts.
func Normalize(segments []RawSegment, model, language string) (TranscriptionResult, []string, error) {
	var words []Word
	var warnings []string

	for i, seg := range segments {
		for j, rw := range seg.Words {
			w := Word{Text: rw.Text, Start: rw.Start, End: rw.End, Probability: clampProbability(rw.Probability)}
			if err := w.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("segment %d word %d discarded: %v", i, j, err))
				continue
			}
			words = append(words, w)
		}
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}

	t := TranscriptionResult{Words: words, Model: NormalizeModelName(model), Language: language}
	t.Text = strings.TrimSpace(strings.Join(texts, " "))
	return t, warnings, nil
}

func clampProbability(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}
