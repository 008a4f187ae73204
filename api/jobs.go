package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/log"
	"github.com/livepeer/reframe-media/metrics"
	"github.com/livepeer/reframe-media/store"
)

// createJob implements spec.md §9's two-step job creation contract:
// validate -> DB insert (status=queued) -> broker dispatch AFTER commit ->
// DB update (task_id). A broker outage after the insert leaves a
// consistent queued row with no task_id rather than a half-created job.
func (s *Server) createJob(w http.ResponseWriter, r *http.Request, jobType store.JobType, taskName, inputAssetID string, payload map[string]interface{}) {
	started := time.Now()
	jobTypeLabel := string(jobType)

	job, err := s.Store.CreateJob(store.Job{
		JobType:      jobType,
		Payload:      payload,
		InputAssetID: inputAssetID,
	})
	if err != nil {
		metrics.Metrics.CreateJobRequestCount.WithLabelValues(jobTypeLabel, "500").Inc()
		metrics.Metrics.CreateJobRequestDurationSec.WithLabelValues(jobTypeLabel, "false").Observe(time.Since(started).Seconds())
		writeStoreError(w, err)
		return
	}
	metrics.Metrics.JobsQueued.Inc()
	metrics.Metrics.CreateJobRequestCount.WithLabelValues(jobTypeLabel, "201").Inc()
	metrics.Metrics.CreateJobRequestDurationSec.WithLabelValues(jobTypeLabel, "true").Observe(time.Since(started).Seconds())

	taskID, err := s.Broker.SendTask(r.Context(), taskName, job.ID)
	if err != nil {
		log.Log(middlewareRequestID(r), "broker dispatch failed, job left queued with no task_id", "job_id", job.ID, "error", err)
		writeJSON(w, http.StatusCreated, job)
		return
	}

	if err := s.Store.SetTaskID(job.ID, taskID); err != nil {
		log.Log(middlewareRequestID(r), "failed to record task id", "job_id", job.ID, "task_id", taskID, "error", err)
	} else {
		job.TaskID = taskID
	}

	writeJSON(w, http.StatusCreated, job)
}

func middlewareRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-Id")
}

func toPayload(v interface{}) map[string]interface{} {
	raw, _ := json.Marshal(v)
	var payload map[string]interface{}
	_ = json.Unmarshal(raw, &payload)
	return payload
}

var captionsSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"video_asset_id": {"type": "string", "minLength": 1},
		"options": {"type": "object"}
	},
	"required": ["video_asset_id"]
}`)

func (s *Server) createCaptionsJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		VideoAssetID string                 `json:"video_asset_id"`
		Options      map[string]interface{} `json:"options"`
	}
	if !decodeAndValidate(w, r, captionsSchema, &req) {
		return
	}
	payload := req.Options
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["video_asset_id"] = req.VideoAssetID
	s.createJob(w, r, store.JobTypeCaptions, broker.TaskGenerateCaptions, req.VideoAssetID, payload)
}

var translateSubtitlesSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"subtitle_asset_id": {"type": "string", "minLength": 1},
		"target_language": {"type": "string", "minLength": 1},
		"bilingual": {"type": "boolean"},
		"options": {"type": "object"}
	},
	"required": ["subtitle_asset_id", "target_language"]
}`)

// createTranslateSubtitlesJob serves both `/subtitles/translate` and
// `/utilities/translate-subtitle`: same job_type, the latter's route also
// accepts an explicit top-level `bilingual` flag merged into payload.
func (s *Server) createTranslateSubtitlesJob(allowBilingualField bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			SubtitleAssetID string                 `json:"subtitle_asset_id"`
			TargetLanguage  string                 `json:"target_language"`
			Bilingual       bool                   `json:"bilingual"`
			Options         map[string]interface{} `json:"options"`
		}
		if !decodeAndValidate(w, r, translateSubtitlesSchema, &req) {
			return
		}
		payload := req.Options
		if payload == nil {
			payload = map[string]interface{}{}
		}
		payload["subtitle_asset_id"] = req.SubtitleAssetID
		payload["target_language"] = req.TargetLanguage
		if allowBilingualField {
			payload["bilingual"] = req.Bilingual
		}
		s.createJob(w, r, store.JobTypeTranslateSubtitles, broker.TaskTranslateSubtitles, req.SubtitleAssetID, payload)
	}
}

var styleSubtitlesSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"video_asset_id": {"type": "string", "minLength": 1},
		"subtitle_asset_id": {"type": "string", "minLength": 1},
		"style": {"type": "object"},
		"preview_seconds": {"type": "number", "minimum": 0}
	},
	"required": ["video_asset_id", "subtitle_asset_id"]
}`)

func (s *Server) createStyleSubtitlesJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		VideoAssetID    string            `json:"video_asset_id"`
		SubtitleAssetID string            `json:"subtitle_asset_id"`
		Style           map[string]string `json:"style"`
		PreviewSeconds  float64           `json:"preview_seconds"`
	}
	if !decodeAndValidate(w, r, styleSubtitlesSchema, &req) {
		return
	}
	s.createJob(w, r, store.JobTypeStyleSubtitles, broker.TaskRenderStyledSubs, req.VideoAssetID, toPayload(req))
}

var shortsSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"video_asset_id": {"type": "string", "minLength": 1},
		"max_clips": {"type": "integer", "minimum": 1},
		"min_duration": {"type": "number", "minimum": 0},
		"max_duration": {"type": "number", "minimum": 0},
		"aspect_ratio": {"type": "string"},
		"options": {"type": "object"}
	},
	"required": ["video_asset_id"]
}`)

func (s *Server) createShortsJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		VideoAssetID string                 `json:"video_asset_id"`
		MaxClips     int                    `json:"max_clips"`
		MinDuration  float64                `json:"min_duration"`
		MaxDuration  float64                `json:"max_duration"`
		AspectRatio  string                 `json:"aspect_ratio"`
		Options      map[string]interface{} `json:"options"`
	}
	if !decodeAndValidate(w, r, shortsSchema, &req) {
		return
	}
	payload := req.Options
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["video_asset_id"] = req.VideoAssetID
	if req.MaxClips != 0 {
		payload["max_clips"] = req.MaxClips
	}
	if req.MinDuration != 0 {
		payload["min_duration"] = req.MinDuration
	}
	if req.MaxDuration != 0 {
		payload["max_duration"] = req.MaxDuration
	}
	if req.AspectRatio != "" {
		payload["aspect_ratio"] = req.AspectRatio
	}
	s.createJob(w, r, store.JobTypeShorts, broker.TaskGenerateShorts, req.VideoAssetID, payload)
}

var mergeAVSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"video_asset_id": {"type": "string", "minLength": 1},
		"audio_asset_id": {"type": "string", "minLength": 1},
		"offset": {"type": "number"},
		"ducking": {},
		"normalize": {"type": "boolean"},
		"options": {"type": "object"}
	},
	"required": ["video_asset_id", "audio_asset_id"]
}`)

func (s *Server) createMergeAVJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		VideoAssetID string                 `json:"video_asset_id"`
		AudioAssetID string                 `json:"audio_asset_id"`
		Offset       float64                `json:"offset"`
		Ducking      interface{}            `json:"ducking"`
		Normalize    bool                   `json:"normalize"`
		Options      map[string]interface{} `json:"options"`
	}
	if !decodeAndValidate(w, r, mergeAVSchema, &req) {
		return
	}
	payload := req.Options
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["video_asset_id"] = req.VideoAssetID
	payload["audio_asset_id"] = req.AudioAssetID
	payload["offset"] = req.Offset
	payload["ducking"] = req.Ducking
	payload["normalize"] = req.Normalize
	s.createJob(w, r, store.JobTypeMergeAV, broker.TaskMergeVideoAudio, req.VideoAssetID, payload)
}

var cutClipSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"video_asset_id": {"type": "string", "minLength": 1},
		"start": {"type": "number"},
		"end": {"type": "number"},
		"options": {"type": "object"}
	},
	"required": ["video_asset_id", "start", "end"]
}`)

func (s *Server) createCutClipJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		VideoAssetID string  `json:"video_asset_id"`
		Start        float64 `json:"start"`
		End          float64 `json:"end"`
	}
	if !decodeAndValidate(w, r, cutClipSchema, &req) {
		return
	}
	s.createJob(w, r, store.JobTypeCutClip, broker.TaskCutClip, req.VideoAssetID, toPayload(req))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	job, err := s.Store.GetJob(ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := store.JobStatus(r.URL.Query().Get("status"))
	jobs, err := s.Store.ListJobs(status)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	job, err := s.Store.CancelJob(ps.ByName("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	job, err := s.Store.GetJob(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !job.Status.Terminal() {
		errors.WriteHTTPConflict(w, "job is not in a terminal state")
		return
	}

	deleteAssets, _ := strconv.ParseBool(r.URL.Query().Get("delete_assets"))

	if err := s.Store.DeleteJob(id); err != nil {
		writeStoreError(w, err)
		return
	}

	// The job row must be gone before checking asset references: otherwise
	// AssetReferenced's query over the jobs table always counts this job's
	// own input_asset_id/output_asset_id as a reference, and the cascade
	// never deletes anything.
	if deleteAssets {
		s.deleteJobAssets(job)
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteJobAssets cascades delete_assets=true to the job's output and any
// clip assets referenced in a shorts manifest's payload.clip_assets, but
// only for assets no surviving job still references.
func (s *Server) deleteJobAssets(job store.Job) {
	candidates := map[string]bool{}
	if job.OutputAssetID != "" {
		candidates[job.OutputAssetID] = true
	}
	if clips, ok := job.Payload["clip_assets"].([]interface{}); ok {
		for _, c := range clips {
			if id, ok := c.(string); ok {
				candidates[id] = true
			}
		}
	}

	for id := range candidates {
		referenced, err := s.Store.AssetReferenced(id)
		if err != nil || referenced {
			continue
		}
		if err := s.Store.DeleteAsset(id); err != nil {
			log.LogNoRequestID("failed to cascade-delete asset", "asset_id", id, "error", err)
		}
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	var apiErr errors.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case errors.CodeNotFound:
			errors.WriteHTTPNotFound(w, apiErr.Message)
		case errors.CodeConflict:
			errors.WriteHTTPConflict(w, apiErr.Message)
		case errors.CodeValidation:
			errors.WriteHTTPValidationError(w, apiErr.Message, apiErr.Details)
		default:
			errors.WriteHTTPInternalServerError(w, apiErr.Message, apiErr.Err)
		}
		return
	}
	errors.WriteHTTPInternalServerError(w, "internal server error", err)
}
