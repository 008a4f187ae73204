package diarize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livepeer/reframe-media/media/subtitles"
	"github.com/livepeer/reframe-media/media/transcribe"
)

func TestAssignSpeakersToLinesPrefersOverlap(t *testing.T) {
	lines := []subtitles.Line{
		{Start: 0.0, End: 1.0, Words: []transcribe.Word{{Text: "hello", Start: 0.0, End: 1.0}}},
		{Start: 1.0, End: 2.0, Words: []transcribe.Word{{Text: "world", Start: 1.0, End: 2.0}}},
	}
	segments := []Segment{
		{Start: 0.0, End: 1.4, Speaker: "SPEAKER_01"},
		{Start: 1.4, End: 3.0, Speaker: "SPEAKER_02"},
	}

	out := AssignSpeakersToLines(lines, segments)
	require.Equal(t, "SPEAKER_01", out[0].Speaker)
	require.Equal(t, "SPEAKER_02", out[1].Speaker)
}

func TestAssignSpeakersToLinesNoOverlapLeavesUnlabeled(t *testing.T) {
	lines := []subtitles.Line{
		{Start: 10.0, End: 11.0, Words: []transcribe.Word{{Text: "hi", Start: 10.0, End: 11.0}}},
	}
	segments := []Segment{{Start: 0.0, End: 1.0, Speaker: "SPEAKER_00"}}

	out := AssignSpeakersToLines(lines, segments)
	require.Equal(t, "", out[0].Speaker)
}

func TestAssignSpeakersToLinesNoSegmentsReturnsUnchanged(t *testing.T) {
	lines := []subtitles.Line{
		{Start: 0.0, End: 1.0, Words: []transcribe.Word{{Text: "hi", Start: 0.0, End: 1.0}}, Speaker: "original"},
	}
	out := AssignSpeakersToLines(lines, nil)
	require.Equal(t, "original", out[0].Speaker)
}
