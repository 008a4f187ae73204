package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/log"
	"github.com/livepeer/reframe-media/media/diarize"
	"github.com/livepeer/reframe-media/media/ffmpegcmd"
	"github.com/livepeer/reframe-media/media/transcribe"
	"github.com/livepeer/reframe-media/media/translate"
	"github.com/livepeer/reframe-media/metrics"
	"github.com/livepeer/reframe-media/storage"
	"github.com/livepeer/reframe-media/store"
)

// Config wires the external collaborators a Pool needs: the store and
// storage backend (C1/C2), the ffmpeg runner, and the ML backend
// selections (transcription/diarization/translation all dispatch to HTTP
// sidecars except their noop/in-process paths).
type Config struct {
	Store     *store.Store
	Backend   storage.Backend
	Broker    broker.Broker
	MediaRoot string

	FfmpegRunner ffmpegcmd.Runner

	TranscribeBackend   transcribe.Backend
	TranscribeSidecarURL string

	Diarize diarize.Config

	Translator translate.Translator

	Retry RetryConfig

	// OfflineMode mirrors storage.Options.OfflineMode: when set, any
	// pipeline step that would reach outside the process (a remote
	// transcription/diarization sidecar, the local translator's HTTP call)
	// is refused pre-flight with a VALIDATION_ERROR instead of attempted.
	OfflineMode bool
}

// Pool is the C5 worker runtime: it registers one Handler per job type on
// the broker and runs each pipeline to completion on whichever goroutine
// the broker's dispatch loop hands it.
type Pool struct {
	cfg        Config
	downloader *retryablehttp.Client
}

func NewPool(cfg Config) *Pool {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.FfmpegRunner == nil {
		cfg.FfmpegRunner = ffmpegcmd.DefaultRunner
	}
	return &Pool{cfg: cfg, downloader: NewDownloadClient()}
}

// RegisterAll binds every job-type handler onto the broker, matching the
// task names in broker/task.go.
func (p *Pool) RegisterAll() {
	p.cfg.Broker.RegisterHandler(broker.TaskGenerateCaptions, p.handleCaptions)
	p.cfg.Broker.RegisterHandler(broker.TaskTranslateSubtitles, p.handleTranslateSubtitles)
	p.cfg.Broker.RegisterHandler(broker.TaskRenderStyledSubs, p.handleStyleSubtitles)
	p.cfg.Broker.RegisterHandler(broker.TaskGenerateShorts, p.handleShorts)
	p.cfg.Broker.RegisterHandler(broker.TaskMergeVideoAudio, p.handleMergeAV)
	p.cfg.Broker.RegisterHandler(broker.TaskCutClip, p.handleCutClip)
}

// pipelineFunc runs the actual pipeline body given the Job row (for options
// and input asset ids) and a scratch directory unique to this task. It
// returns the output asset id, any payload fields to merge on success, and
// an error (including UserCancelled).
type pipelineFunc func(ctx context.Context, job store.Job, workDir string, reporter *Reporter) (outputAssetID string, payload map[string]interface{}, err error)

// run is the shared five-step skeleton from spec §4.5: mark running, run
// the pipeline body, and set the terminal state. jobID is task.Args[0] by
// convention for every task name (see broker/task.go's signatures).
func (p *Pool) run(ctx context.Context, task broker.Task, publish func(broker.Event), fn pipelineFunc) error {
	jobID, ok := firstArgString(task.Args)
	if !ok {
		return fmt.Errorf("task %s: missing job_id argument", task.Name)
	}

	reporter := newReporter(p.cfg.Store, jobID, publish)
	if err := reporter.MarkRunning(); err != nil {
		return err
	}

	job, err := p.cfg.Store.GetJob(jobID)
	if err != nil {
		return err
	}

	workDir, cleanup, err := p.scratchDir(jobID)
	if err != nil {
		_ = reporter.MarkFailed(err.Error())
		return err
	}
	defer cleanup()

	jobType := string(job.JobType)
	metrics.Metrics.Pipeline.Count.WithLabelValues(jobType).Inc()
	started := time.Now()

	outputAssetID, payload, err := fn(ctx, job, workDir, reporter)
	metrics.Metrics.Pipeline.Duration.WithLabelValues(jobType).Observe(time.Since(started).Seconds())
	if err != nil {
		if err == UserCancelled {
			log.LogNoRequestID("pipeline observed cancellation", "job_id", jobID, "task", task.Name)
			metrics.Metrics.JobsInFlight.Add(-1)
			return nil
		}
		metrics.Metrics.Pipeline.Failures.WithLabelValues(jobType).Inc()
		truncated := err.Error()
		if len(truncated) > 4096 {
			truncated = truncated[len(truncated)-4096:]
		}
		if markErr := reporter.MarkFailed(truncated); markErr != nil {
			return markErr
		}
		return err
	}

	return reporter.MarkCompleted(outputAssetID, payload)
}

func (p *Pool) scratchDir(jobID string) (string, func(), error) {
	dir := filepath.Join(p.cfg.MediaRoot, "tmp", "job-"+jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("creating scratch dir for job %s: %w", jobID, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func firstArgString(args []interface{}) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}

func (p *Pool) fetchAsset(ctx context.Context, assetID string) (store.MediaAsset, FetchedAsset, error) {
	asset, err := p.cfg.Store.GetAsset(assetID)
	if err != nil {
		return store.MediaAsset{}, FetchedAsset{}, err
	}
	fetched, err := FetchAsset(ctx, p.cfg.Backend, p.downloader, p.cfg.MediaRoot, asset)
	return asset, fetched, err
}
