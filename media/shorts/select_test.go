package shorts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectTopPicksHighestScoringNonOverlapping(t *testing.T) {
	candidates := []SegmentCandidate{
		{Start: 0, End: 10, Score: 5},
		{Start: 5, End: 15, Score: 9},
		{Start: 16, End: 26, Score: 4},
		{Start: 30, End: 40, Score: 3},
	}
	opts := SelectOptions{MaxSegments: 2, MinDuration: 1, MaxDuration: 100}

	selected := SelectTop(candidates, opts)
	require.Len(t, selected, 2)
	require.Equal(t, 5.0, selected[0].Start)
	require.Equal(t, 16.0, selected[1].Start)
}

func TestSelectTopRespectsMinGap(t *testing.T) {
	candidates := []SegmentCandidate{
		{Start: 0, End: 10, Score: 5},
		{Start: 10.5, End: 20, Score: 5},
	}
	opts := SelectOptions{MaxSegments: 2, MinDuration: 1, MaxDuration: 100, MinGap: 1.0}

	selected := SelectTop(candidates, opts)
	require.Len(t, selected, 1)
}

func TestSelectTopFiltersByDurationBounds(t *testing.T) {
	candidates := []SegmentCandidate{
		{Start: 0, End: 1, Score: 100},   // too short
		{Start: 5, End: 200, Score: 100}, // too long
		{Start: 210, End: 220, Score: 1},
	}
	opts := SelectOptions{MaxSegments: 5, MinDuration: 5, MaxDuration: 30}

	selected := SelectTop(candidates, opts)
	require.Len(t, selected, 1)
	require.Equal(t, 210.0, selected[0].Start)
}

func TestSelectTopReturnsEmptyWhenNothingQualifies(t *testing.T) {
	selected := SelectTop(nil, SelectOptions{MaxSegments: 3, MinDuration: 1, MaxDuration: 10})
	require.Empty(t, selected)
}

func TestSelectTopOutputSortedByStart(t *testing.T) {
	candidates := []SegmentCandidate{
		{Start: 50, End: 60, Score: 1},
		{Start: 0, End: 10, Score: 1},
		{Start: 25, End: 35, Score: 1},
	}
	opts := SelectOptions{MaxSegments: 3, MinDuration: 1, MaxDuration: 100}

	selected := SelectTop(candidates, opts)
	require.Len(t, selected, 3)
	require.Equal(t, []float64{0, 25, 50}, []float64{selected[0].Start, selected[1].Start, selected[2].Start})
}
