package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/livepeer/reframe-media/log"
)

// SpeechBrainClient is a pragmatic fallback diarizer for when pyannote
// models are unavailable. VAD boundaries and per-region speaker embeddings
// are computed by an out-of-process SpeechBrain sidecar (torch-only, no Go
// equivalent); the greedy online clustering of those embeddings into
// speakers happens here.
type SpeechBrainClient struct {
	BaseURL    string
	HTTPClient *http.Client
	cfg        Config
}

func NewSpeechBrainClient(cfg Config) *SpeechBrainClient {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.65
	}
	if cfg.MergeGapSeconds == 0 {
		cfg.MergeGapSeconds = 0.10
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	return &SpeechBrainClient{
		BaseURL:    os.Getenv("REFRAME_SPEECHBRAIN_URL"),
		HTTPClient: client.StandardClient(),
		cfg:        cfg,
	}
}

type speechbrainRequest struct {
	AudioPath string `json:"audio_path"`
	Model     string `json:"model"`
}

// speechbrainRegion is a VAD-detected speech region with its speaker
// embedding, as returned by the sidecar.
type speechbrainRegion struct {
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	Embedding []float64 `json:"embedding"`
}

type speechbrainResponse struct {
	Regions []speechbrainRegion `json:"regions"`
}

func (c *SpeechBrainClient) fetchRegions(ctx context.Context, audioPath string) ([]speechbrainRegion, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("speechbrain diarization backend selected but REFRAME_SPEECHBRAIN_URL is not configured")
	}

	body, err := json.Marshal(speechbrainRequest{AudioPath: audioPath, Model: c.cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("marshal speechbrain request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speechbrain sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speechbrain sidecar returned status %d", resp.StatusCode)
	}

	var parsed speechbrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode speechbrain response: %w", err)
	}
	return parsed.Regions, nil
}

func (c *SpeechBrainClient) Diarize(ctx context.Context, audioPath string) ([]Segment, error) {
	regions, err := c.fetchRegions(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	segments := clusterRegions(regions, c.cfg.SimilarityThreshold, c.cfg.MergeGapSeconds, c.cfg.MinSegmentDuration)
	log.Log("", "speechbrain diarization complete", "segments", len(segments))
	return segments, nil
}

// clusterRegions assigns each VAD region to a speaker cluster via greedy
// online cosine-similarity clustering, then merges adjacent same-speaker
// segments that fall within mergeGap of each other.
//
// Each region is compared against every existing cluster centroid; it joins
// the best-matching cluster if the similarity meets threshold, else starts
// a new cluster. Centroids are updated incrementally (running mean,
// renormalized) so later regions compare against the cluster's accumulated
// average rather than only its first member.
func clusterRegions(regions []speechbrainRegion, threshold, mergeGap, minSegmentDuration float64) []Segment {
	type centroid struct {
		vec   []float64
		count int
	}

	var centroids []centroid
	var segments []Segment

	normalize := func(v []float64) []float64 {
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return v
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = x / norm
		}
		return out
	}

	cosineSimilarity := func(a, b []float64) float64 {
		if len(a) != len(b) || len(a) == 0 {
			return -1
		}
		var dot float64
		for i := range a {
			dot += a[i] * b[i]
		}
		return dot
	}

	for _, r := range regions {
		if r.End <= r.Start || len(r.Embedding) == 0 {
			continue
		}
		if minSegmentDuration > 0 && (r.End-r.Start) < minSegmentDuration {
			continue
		}

		emb := normalize(r.Embedding)

		bestIdx := -1
		bestSim := -1.0
		for i, c := range centroids {
			sim := cosineSimilarity(emb, c.vec)
			if sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}

		var clusterIdx int
		if bestIdx == -1 || bestSim < threshold {
			centroids = append(centroids, centroid{vec: emb, count: 1})
			clusterIdx = len(centroids) - 1
		} else {
			c := centroids[bestIdx]
			updated := make([]float64, len(c.vec))
			for i := range updated {
				updated[i] = (c.vec[i]*float64(c.count) + emb[i]) / float64(c.count+1)
			}
			centroids[bestIdx] = centroid{vec: normalize(updated), count: c.count + 1}
			clusterIdx = bestIdx
		}

		speaker := fmt.Sprintf("SPEAKER_%02d", clusterIdx)
		if n := len(segments); n > 0 && segments[n-1].Speaker == speaker && r.Start <= segments[n-1].End+mergeGap {
			if r.End > segments[n-1].End {
				segments[n-1].End = r.End
			}
			continue
		}
		segments = append(segments, Segment{Start: r.Start, End: r.End, Speaker: speaker})
	}

	return filterByMinDuration(segments, minSegmentDuration)
}
