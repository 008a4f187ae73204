package worker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livepeer/reframe-media/media/ffmpegcmd"
	"github.com/livepeer/reframe-media/media/shorts"
)

func TestPenalizeSilenceCoverageDocksMostlySilentCandidate(t *testing.T) {
	candidates := []shorts.SegmentCandidate{
		{Start: 0, End: 10, Score: 1},
	}
	silence := []ffmpegcmd.SilenceInterval{
		{Start: 0, End: 4},  // overlaps the start
		{Start: 6, End: 10}, // overlaps the end
	}

	// coverage is 8/10 = 0.8 > 0.5, so the score drops by 0.5*0.8; the
	// bounds are left as they were.
	penalized := penalizeSilenceCoverage(candidates, silence)
	require.Len(t, penalized, 1)
	require.Equal(t, 0.0, penalized[0].Start)
	require.Equal(t, 10.0, penalized[0].End)
	require.InDelta(t, 0.6, penalized[0].Score, 1e-9)
}

func TestPenalizeSilenceCoverageLeavesNonOverlappingCandidateUntouched(t *testing.T) {
	candidates := []shorts.SegmentCandidate{{Start: 5, End: 15}}
	silence := []ffmpegcmd.SilenceInterval{{Start: 20, End: 25}}

	penalized := penalizeSilenceCoverage(candidates, silence)
	require.Equal(t, candidates, penalized)
}
