package store

import "time"

// AssetKind enumerates the content types a MediaAsset can hold.
type AssetKind string

const (
	AssetKindVideo          AssetKind = "video"
	AssetKindAudio          AssetKind = "audio"
	AssetKindSubtitle       AssetKind = "subtitle"
	AssetKindTranscription  AssetKind = "transcription"
	AssetKindImage          AssetKind = "image"
	AssetKindShortsManifest AssetKind = "shorts_manifest"
)

// MediaAsset is a content-addressable artifact registered in the store. It
// is owned by no Job; Jobs hold weak references to it by id.
type MediaAsset struct {
	ID              string    `json:"id"`
	Kind            AssetKind `json:"kind"`
	URI             string    `json:"uri"`
	MimeType        string    `json:"mime_type,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// JobType enumerates the pipelines the worker runtime knows how to run.
type JobType string

const (
	JobTypeCaptions           JobType = "captions"
	JobTypeTranslateSubtitles JobType = "translate_subtitles"
	JobTypeStyleSubtitles     JobType = "style_subtitles"
	JobTypeShorts             JobType = "shorts"
	JobTypeMergeAV            JobType = "merge_av"
	JobTypeCutClip            JobType = "cut_clip"
)

// JobStatus is the job lifecycle state. Completed, Failed and Cancelled are
// terminal: once entered, Status and Error never change again.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// Job is a persisted request for a pipeline execution.
type Job struct {
	ID            string                 `json:"id"`
	JobType       JobType                `json:"job_type"`
	TaskID        string                 `json:"task_id,omitempty"`
	Status        JobStatus              `json:"status"`
	Progress      float64                `json:"progress"`
	Error         string                 `json:"error,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
	InputAssetID  string                 `json:"input_asset_id,omitempty"`
	OutputAssetID string                 `json:"output_asset_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// SubtitleStylePreset is a read-mostly row managed out-of-band; the core
// only consumes it.
type SubtitleStylePreset struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Style       map[string]interface{} `json:"style"`
}
