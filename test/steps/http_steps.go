package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/livepeer/reframe-media/media/subtitles"
)

// RegisterSteps wires every step definition this package knows onto ctx,
// sharing c as the per-scenario state.
func RegisterSteps(ctx *godog.ScenarioContext, c *StepContext) {
	ctx.Step(`^a fixture video "([^"]+)" of (\d+) seconds made of silence, a tone, then silence$`, c.givenFixtureExists)
	ctx.Step(`^a fixture video "([^"]+)" of (\d+) seconds containing synthetic speech$`, c.givenFixtureExists)
	ctx.Step(`^a fixture video "([^"]+)" of (\d+) seconds$`, c.givenFixtureExists)
	ctx.Step(`^a fixture subtitle "([^"]+)" with (\d+) cues$`, c.givenFixtureExists)

	ctx.Step(`^I upload "([^"]+)" as an asset of kind "([^"]+)"$`, c.uploadAsset)
	ctx.Step(`^I upload "([^"]+)" as an asset of kind "([^"]+)" with content-type "([^"]+)"$`, c.uploadAssetWithContentType)

	ctx.Step(`^I POST to "([^"]+)" with body:$`, c.postJSON)
	ctx.Step(`^I GET "([^"]+)"$`, c.getPath)
	ctx.Step(`^I DELETE "([^"]+)"$`, c.deletePath)
	ctx.Step(`^I immediately DELETE "([^"]+)"$`, c.deletePath)

	ctx.Step(`^the response status should be (\d+)$`, c.assertStatus)
	ctx.Step(`^the response body contains error code "([^"]+)"$`, c.assertErrorCode)
	ctx.Step(`^the response body should contain error code "([^"]+)"$`, c.assertErrorCode)

	ctx.Step(`^the job eventually reaches status "([^"]+)"$`, c.waitForJobStatus)

	ctx.Step(`^the completed job's shorts manifest has exactly (\d+) clips?$`, c.assertManifestClipCount)
	ctx.Step(`^the clip's start time is between ([\d.]+) and ([\d.]+) seconds$`, c.assertClipStartBetween)

	ctx.Step(`^the completed job has an output asset of kind "([^"]+)"$`, c.assertOutputAssetKind)
	ctx.Step(`^the output asset's body contains "([^"]+)"$`, c.assertOutputAssetBodyContains)
	ctx.Step(`^the output asset resolves to a local path under "([^"]+)" with nonzero size$`, c.assertOutputAssetLocalNonzero)

	ctx.Step(`^the completed job's payload contains a non-empty "([^"]+)" list$`, c.assertPayloadListNonEmpty)
	ctx.Step(`^the output subtitle asset has (\d+) cues$`, c.assertSubtitleCueCount)
}

func (c *StepContext) givenFixtureExists(name string, _ int) error {
	path, err := generateFixture(context.Background(), c.FixtureDir, name)
	if err != nil {
		return err
	}
	c.LastFixturePath = path
	return nil
}

func (c *StepContext) uploadAsset(name, kind string) error {
	return c.uploadAssetWithContentType(name, kind, "")
}

func (c *StepContext) uploadAssetWithContentType(name, kind, contentType string) error {
	path := c.fixturePath(name)
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("kind", kind); err != nil {
		return err
	}

	var part io.Writer
	if contentType != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
		h.Set("Content-Type", contentType)
		part, err = writer.CreatePart(h)
	} else {
		part, err = writer.CreateFormFile("file", filepath.Base(path))
	}
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/assets/upload", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := readAll(resp)
	if err != nil {
		return err
	}
	c.LastResponse = resp
	c.LastBody = raw

	var asset struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &asset) == nil && asset.ID != "" {
		c.LastAssetID = asset.ID
	}
	return nil
}

func (c *StepContext) postJSON(path string, body *godog.DocString) error {
	resolved := c.resolvePlaceholders(body.Content)
	return c.doRequest(http.MethodPost, path, []byte(resolved))
}

func (c *StepContext) getPath(path string) error {
	return c.doRequest(http.MethodGet, path, nil)
}

func (c *StepContext) deletePath(path string) error {
	return c.doRequest(http.MethodDelete, path, nil)
}

func (c *StepContext) assertStatus(expected int) error {
	if c.LastResponse == nil {
		return fmt.Errorf("no response recorded yet")
	}
	if c.LastResponse.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, c.LastResponse.StatusCode, string(c.LastBody))
	}
	return nil
}

func (c *StepContext) assertErrorCode(code string) error {
	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(c.LastBody, &envelope); err != nil {
		return fmt.Errorf("response body isn't a JSON error envelope: %w (%s)", err, string(c.LastBody))
	}
	if envelope.Code != code {
		return fmt.Errorf("expected error code %q, got %q", code, envelope.Code)
	}
	return nil
}

// waitForJobStatus polls GET /jobs/{id} until it reaches status, or fails
// the scenario after a generous timeout — pipelines here invoke real
// ffmpeg and (where configured) real transcription/translation backends.
func (c *StepContext) waitForJobStatus(status string) error {
	deadline := time.Now().Add(2 * time.Minute)
	var lastJob struct {
		Status        string                 `json:"status"`
		Error         string                 `json:"error"`
		OutputAssetID string                 `json:"output_asset_id"`
		Payload       map[string]interface{} `json:"payload"`
	}
	for time.Now().Before(deadline) {
		resp, err := c.Client.Get(c.BaseURL + "/jobs/" + c.LastJobID)
		if err != nil {
			return err
		}
		raw, err := readAll(resp)
		resp.Body.Close()
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &lastJob); err != nil {
			return fmt.Errorf("decoding job: %w (%s)", err, string(raw))
		}
		c.LastBody = raw
		if lastJob.OutputAssetID != "" {
			c.LastJobOutputID = lastJob.OutputAssetID
		}
		if lastJob.Status == status {
			return nil
		}
		if (lastJob.Status == "failed" || lastJob.Status == "cancelled") && status == "completed" {
			return fmt.Errorf("job reached terminal status %q (error=%q) while waiting for %q", lastJob.Status, lastJob.Error, status)
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("job %s did not reach status %q within timeout, last status %q", c.LastJobID, status, lastJob.Status)
}

func (c *StepContext) fetchOutputAssetBody() ([]byte, error) {
	resp, err := c.Client.Get(c.BaseURL + "/assets/" + c.LastJobOutputID + "/download")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readAll(resp)
}

func (c *StepContext) assertManifestClipCount(expected int) error {
	raw, err := c.fetchOutputAssetBody()
	if err != nil {
		return err
	}
	var manifest struct {
		Clips []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"clips"`
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return fmt.Errorf("decoding shorts manifest: %w (%s)", err, string(raw))
	}
	if len(manifest.Clips) != expected {
		return fmt.Errorf("expected %d clip(s), got %d", expected, len(manifest.Clips))
	}
	c.lastManifestBody = raw
	return nil
}

func (c *StepContext) assertClipStartBetween(low, high float64) error {
	var manifest struct {
		Clips []struct {
			Start float64 `json:"start"`
		} `json:"clips"`
	}
	if err := json.Unmarshal(c.lastManifestBody, &manifest); err != nil {
		return err
	}
	if len(manifest.Clips) == 0 {
		return fmt.Errorf("no clips in manifest")
	}
	start := manifest.Clips[0].Start
	if start < low || start > high {
		return fmt.Errorf("clip start %.2f not in [%.2f, %.2f]", start, low, high)
	}
	return nil
}

func (c *StepContext) assertOutputAssetKind(kind string) error {
	resp, err := c.Client.Get(c.BaseURL + "/assets/" + c.LastJobOutputID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := readAll(resp)
	if err != nil {
		return err
	}
	var asset struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &asset); err != nil {
		return err
	}
	if asset.Kind != kind {
		return fmt.Errorf("expected output asset kind %q, got %q", kind, asset.Kind)
	}
	return nil
}

func (c *StepContext) assertOutputAssetBodyContains(substr string) error {
	raw, err := c.fetchOutputAssetBody()
	if err != nil {
		return err
	}
	if !strings.Contains(string(raw), substr) {
		return fmt.Errorf("output asset body does not contain %q:\n%s", substr, string(raw))
	}
	return nil
}

func (c *StepContext) assertOutputAssetLocalNonzero(under string) error {
	resp, err := c.Client.Get(c.BaseURL + "/assets/" + c.LastJobOutputID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := readAll(resp)
	if err != nil {
		return err
	}
	var asset struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(raw, &asset); err != nil {
		return err
	}
	wantPrefix := "/" + strings.TrimSuffix(under, "/")
	if !strings.HasPrefix(asset.URI, wantPrefix) {
		return fmt.Errorf("expected output asset uri %q to start with %q", asset.URI, wantPrefix)
	}
	localPath := filepath.Join(c.MediaRoot, strings.TrimPrefix(asset.URI, "/media/"))
	return c.fileExistsAndNonEmpty(localPath)
}

func (c *StepContext) assertPayloadListNonEmpty(key string) error {
	var job struct {
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(c.LastBody, &job); err != nil {
		return err
	}
	list, ok := job.Payload[key].([]interface{})
	if !ok || len(list) == 0 {
		return fmt.Errorf("expected non-empty payload.%s list, got %#v", key, job.Payload[key])
	}
	return nil
}

func (c *StepContext) assertSubtitleCueCount(expected int) error {
	raw, err := c.fetchOutputAssetBody()
	if err != nil {
		return err
	}
	lines, err := subtitles.ParseSRT(string(raw))
	if err != nil {
		return fmt.Errorf("parsing translated srt: %w", err)
	}
	if len(lines) != expected {
		return fmt.Errorf("expected %d cues, got %d", expected, len(lines))
	}
	return nil
}
