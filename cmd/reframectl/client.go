package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
)

// apiClient is a thin wrapper over the C4 job API's HTTP surface, enough
// for an admin CLI to inspect and manage jobs/assets without reimplementing
// the API's request/response shapes.
type apiClient struct {
	baseURL string
	token   string
}

func newFlagSet(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	apiURL := fs.String("api-url", envOr("REFRAME_API_URL", "http://localhost:8080"), "Base URL of the reframe-media API")
	token := fs.String("api-token", os.Getenv("REFRAME_API_TOKEN"), "Bearer token for the API")
	return fs, apiURL, token
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *apiClient) do(method, path string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

// printJSON re-indents an API response for terminal display, falling back
// to the raw bytes if it isn't valid JSON (e.g. an empty 204 body).
func printJSON(ui uiWriter, raw []byte) {
	if len(raw) == 0 {
		return
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		ui.Output(string(raw))
		return
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		ui.Output(string(raw))
		return
	}
	ui.Output(string(pretty))
}

func statusError(status int) error {
	return fmt.Errorf("api returned status %d", status)
}

// uiWriter is the subset of cli.Ui this package needs, kept narrow so the
// command files don't all have to import mitchellh/cli's full surface.
type uiWriter interface {
	Output(string)
	Error(string)
}
