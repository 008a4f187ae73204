package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// LocalTranslator delegates to an offline local translation sidecar (e.g. an
// Argos Translate package server) reachable at REFRAME_LOCAL_TRANSLATE_URL.
// Argos' packages are Python/torch-only with no Go equivalent, so model
// inference stays out-of-process; this client only owns the batching and
// HTTP transport, mirroring the diarization sidecar clients.
type LocalTranslator struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewLocalTranslator() *LocalTranslator {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	return &LocalTranslator{
		BaseURL:    os.Getenv("REFRAME_LOCAL_TRANSLATE_URL"),
		HTTPClient: client.StandardClient(),
	}
}

type localTranslateRequest struct {
	Texts []string `json:"texts"`
	Src   string   `json:"src"`
	Tgt   string   `json:"tgt"`
}

type localTranslateResponse struct {
	Translations []string `json:"translations"`
}

func (t *LocalTranslator) TranslateBatch(ctx context.Context, texts []string, src, tgt string) ([]string, error) {
	if t.BaseURL == "" {
		return nil, fmt.Errorf("local translation backend selected but REFRAME_LOCAL_TRANSLATE_URL is not configured")
	}

	body, err := json.Marshal(localTranslateRequest{Texts: texts, Src: src, Tgt: tgt})
	if err != nil {
		return nil, fmt.Errorf("marshal local translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local translate sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local translate sidecar returned status %d", resp.StatusCode)
	}

	var parsed localTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode local translate response: %w", err)
	}
	if len(parsed.Translations) != len(texts) {
		return nil, fmt.Errorf("local translate sidecar returned %d translations for %d inputs", len(parsed.Translations), len(texts))
	}
	return parsed.Translations, nil
}
