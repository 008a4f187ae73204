package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/livepeer/reframe-media/log"
)

// PyannoteClient delegates to an out-of-process pyannote.audio inference
// sidecar over HTTP, since the pyannote pipeline itself is Python/torch-only
// and has no Go equivalent. The sidecar URL is read from
// REFRAME_PYANNOTE_URL; requests/retries follow the same retryablehttp
// posture the rest of this module uses for outbound calls.
type PyannoteClient struct {
	BaseURL    string
	HTTPClient *http.Client
	cfg        Config
}

func NewPyannoteClient(cfg Config) *PyannoteClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	return &PyannoteClient{
		BaseURL:    os.Getenv("REFRAME_PYANNOTE_URL"),
		HTTPClient: client.StandardClient(),
		cfg:        cfg,
	}
}

type pyannoteRequest struct {
	AudioPath        string  `json:"audio_path"`
	Model            string  `json:"model"`
	HuggingFaceToken string  `json:"huggingface_token,omitempty"`
	MinSegmentSec    float64 `json:"min_segment_duration,omitempty"`
}

type pyannoteTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type pyannoteResponse struct {
	Turns []pyannoteTurn `json:"turns"`
}

func (c *PyannoteClient) Diarize(ctx context.Context, audioPath string) ([]Segment, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("pyannote diarization backend selected but REFRAME_PYANNOTE_URL is not configured")
	}

	body, err := json.Marshal(pyannoteRequest{
		AudioPath:        audioPath,
		Model:            c.cfg.Model,
		HuggingFaceToken: c.cfg.HuggingFaceToken,
		MinSegmentSec:    c.cfg.MinSegmentDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal pyannote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/diarize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pyannote sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pyannote sidecar returned status %d", resp.StatusCode)
	}

	var parsed pyannoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode pyannote response: %w", err)
	}

	segments := make([]Segment, 0, len(parsed.Turns))
	for _, t := range parsed.Turns {
		segments = append(segments, Segment{Start: t.Start, End: t.End, Speaker: t.Speaker})
	}
	segments = filterByMinDuration(segments, c.cfg.MinSegmentDuration)

	log.Log("", "pyannote diarization complete", "segments", len(segments))
	return segments, nil
}
