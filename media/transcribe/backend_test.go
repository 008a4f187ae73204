package transcribe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDiscardsMalformedWords(t *testing.T) {
	prob := 0.9
	segments := []RawSegment{
		{
			Text: "hello world",
			Words: []RawWord{
				{Text: "hello", Start: 0, End: 0.5, Probability: &prob},
				{Text: "broken", Start: 1, End: 0.5}, // end <= start, discarded
				{Text: "world", Start: 0.6, End: 1.0},
			},
		},
	}

	result, warnings, err := Normalize(segments, "whisper-large-v3", "en")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Len(t, result.Words, 2)
	require.Equal(t, "large-v3", result.Model)
	require.Equal(t, "hello world", result.Text)
}

func TestNoopTranscriberReturnsSyntheticWord(t *testing.T) {
	result, err := NoopTranscriber{}.Transcribe(nil, "/tmp/video.mp4", "")
	require.NoError(t, err)
	require.Len(t, result.Words, 1)
	require.Equal(t, "video.mp4", result.Words[0].Text)
}

func TestTranscriptionResultValidateRejectsOverlap(t *testing.T) {
	bad := TranscriptionResult{Words: []Word{
		{Text: "a", Start: 0, End: 1},
		{Text: "b", Start: 0.5, End: 1.5},
	}}
	require.Error(t, bad.Validate())
}
