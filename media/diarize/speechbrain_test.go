package diarize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClusterRegionsGroupsBySimilarity(t *testing.T) {
	speakerA := []float64{1, 0}
	speakerB := []float64{0, 1}

	regions := []speechbrainRegion{
		{Start: 0.0, End: 1.0, Embedding: speakerA},
		{Start: 1.0, End: 2.0, Embedding: speakerB},
		{Start: 2.0, End: 3.0, Embedding: speakerA},
	}

	segments := clusterRegions(regions, 0.65, 0.10, 0)
	require.Len(t, segments, 3)
	require.Equal(t, segments[0].Speaker, segments[2].Speaker)
	require.NotEqual(t, segments[0].Speaker, segments[1].Speaker)
}

func TestClusterRegionsMergesAdjacentSameSpeaker(t *testing.T) {
	speaker := []float64{1, 0}
	regions := []speechbrainRegion{
		{Start: 0.0, End: 1.0, Embedding: speaker},
		{Start: 1.05, End: 2.0, Embedding: speaker},
	}

	segments := clusterRegions(regions, 0.65, 0.10, 0)
	require.Len(t, segments, 1)
	require.Equal(t, 0.0, segments[0].Start)
	require.Equal(t, 2.0, segments[0].End)
}

func TestClusterRegionsDoesNotMergeAcrossLargeGap(t *testing.T) {
	speaker := []float64{1, 0}
	regions := []speechbrainRegion{
		{Start: 0.0, End: 1.0, Embedding: speaker},
		{Start: 5.0, End: 6.0, Embedding: speaker},
	}

	segments := clusterRegions(regions, 0.65, 0.10, 0)
	require.Len(t, segments, 2)
}

func TestClusterRegionsFiltersShortSegments(t *testing.T) {
	speaker := []float64{1, 0}
	regions := []speechbrainRegion{
		{Start: 0.0, End: 0.1, Embedding: speaker},
		{Start: 5.0, End: 6.0, Embedding: speaker},
	}

	segments := clusterRegions(regions, 0.65, 0.10, 0.5)
	require.Len(t, segments, 1)
	require.Equal(t, 5.0, segments[0].Start)
}
