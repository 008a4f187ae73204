package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// SidecarClient reaches a real transcription backend (whisper in any of its
// vendor flavors) over HTTP. None of these models have a Go-native
// implementation, so — matching how media/diarize reaches pyannote and
// speechbrain — the model inference itself is delegated to an external
// process; this client only owns the wire contract and retry policy.
type SidecarClient struct {
	BaseURL    string
	Backend    Backend
	HTTPClient *retryablehttp.Client
}

// NewSidecarClient builds a client whose BaseURL is the baseURL argument
// (the configured transcription sidecar URL); it reads no env var itself.
func NewSidecarClient(backend Backend, baseURL string) *SidecarClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	return &SidecarClient{BaseURL: baseURL, Backend: backend, HTTPClient: rc}
}

type sidecarSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []sidecarWord `json:"words"`
}

type sidecarWord struct {
	Text        string   `json:"text"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	Probability *float64 `json:"probability,omitempty"`
}

type sidecarWireResponse struct {
	Segments []sidecarSegment `json:"segments"`
	Language string           `json:"language"`
}

// Transcribe posts the media file as multipart/form-data to
// {BaseURL}/transcribe, matching the whisper.cpp/faster-whisper HTTP server
// convention of accepting a file upload plus a model name.
func (c *SidecarClient) Transcribe(ctx context.Context, mediaPath string, model string) (TranscriptionResult, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("opening media file for transcription: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", model); err != nil {
		return TranscriptionResult{}, err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return TranscriptionResult{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return TranscriptionResult{}, fmt.Errorf("copying media file into request body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return TranscriptionResult{}, err
	}

	url := fmt.Sprintf("%s/transcribe", c.BaseURL)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body.Bytes())
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("building transcription request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("calling %s transcription sidecar: %w", c.Backend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return TranscriptionResult{}, fmt.Errorf("%s transcription sidecar returned %d: %s", c.Backend, resp.StatusCode, string(data))
	}

	var wire sidecarWireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return TranscriptionResult{}, fmt.Errorf("decoding %s transcription response: %w", c.Backend, err)
	}

	segments := make([]RawSegment, 0, len(wire.Segments))
	for _, s := range wire.Segments {
		words := make([]RawWord, 0, len(s.Words))
		for _, w := range s.Words {
			words = append(words, RawWord{Text: w.Text, Start: w.Start, End: w.End, Probability: w.Probability})
		}
		segments = append(segments, RawSegment{Text: s.Text, Start: s.Start, End: s.End, Words: words})
	}

	result, _, err := Normalize(segments, model, wire.Language)
	if err != nil {
		return TranscriptionResult{}, err
	}
	return result, nil
}

// Dispatch selects a Transcriber for the given backend. Backend noop (or
// unset, matching OFFLINE_MODE's default) never leaves the process;
// everything else is an HTTP sidecar call.
func Dispatch(backend Backend, sidecarURL string) Transcriber {
	if backend == "" || backend == BackendNoop {
		return NoopTranscriber{}
	}
	return NewSidecarClient(backend, sidecarURL)
}
