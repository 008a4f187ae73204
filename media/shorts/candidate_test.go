package shorts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualSplitsCoversDuration(t *testing.T) {
	segments := EqualSplits(25, 10)
	require.Len(t, segments, 3)
	require.Equal(t, 0.0, segments[0].Start)
	require.Equal(t, 10.0, segments[0].End)
	require.Equal(t, 20.0, segments[2].Start)
	require.Equal(t, 25.0, segments[2].End)
}

func TestSlidingWindowOverlaps(t *testing.T) {
	segments := SlidingWindow(20, 10, 5)
	require.Equal(t, []float64{0, 5, 10, 15}, []float64{segments[0].Start, segments[1].Start, segments[2].Start, segments[3].Start})
	require.Equal(t, 10.0, segments[0].End)
}

func TestCandidateDurationClampsAtZero(t *testing.T) {
	c := SegmentCandidate{Start: 10, End: 5}
	require.Equal(t, 0.0, c.Duration())
}
