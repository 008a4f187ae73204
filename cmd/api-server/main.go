// Command api-server runs the C4 job API: it accepts requests, persists
// jobs and assets through the store, and dispatches work onto the broker.
// Because the only Broker implementation today is in-process
// (broker.NewInProcessBroker), this binary also starts the C5 worker pool
// in the same process so dispatched tasks actually have a handler to run
// against — see DESIGN.md's cmd/ entry for the reasoning.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"

	"github.com/livepeer/reframe-media/api"
	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/media/diarize"
	"github.com/livepeer/reframe-media/media/transcribe"
	"github.com/livepeer/reframe-media/metrics"
	"github.com/livepeer/reframe-media/storage"
	"github.com/livepeer/reframe-media/store"
	"github.com/livepeer/reframe-media/worker"
)

func main() {
	if err := flag.Set("logtostderr", "true"); err != nil {
		glog.Fatal(err)
	}

	fs := flag.NewFlagSet("api-server", flag.ExitOnError)
	cli := config.Cli{}

	fs.IntVar(&cli.Port, "port", 8080, "Port to listen on for the HTTP API")
	fs.StringVar(&cli.APIToken, "api-token", "", "Bearer token required on every API request")
	fs.StringVar(&cli.DatabaseURL, "database-url", "", "Postgres connection string")
	fs.StringVar(&cli.MediaRoot, "media-root", config.DefaultMediaRoot, "Root directory for local media storage and scratch files")
	fs.StringVar(&cli.StorageBackend, "storage-backend", "local", "Storage backend: local, s3, or r2")
	fs.StringVar(&cli.S3Bucket, "s3-bucket", "", "S3/R2 bucket name")
	fs.StringVar(&cli.S3Region, "s3-region", "", "S3/R2 region")
	fs.StringVar(&cli.S3PublicBaseURL, "s3-public-base-url", "", "Public base URL for constructing non-presigned download links")
	fs.BoolVar(&cli.OfflineMode, "offline-mode", false, "Disallow any backend requiring outbound network access")
	fs.IntVar(&cli.MaxConcurrentJobs, "max-concurrent-jobs", config.DefaultMaxConcurrentJobs, "Maximum number of jobs the worker pool runs concurrently")
	fs.Int64Var(&cli.MaxUploadBytes, "max-upload-bytes", config.MaxInputFileSizeBytes, "Maximum accepted size for an uploaded asset")
	fs.StringVar(&cli.TmpTTL, "tmp-ttl", config.DefaultTmpTTL.String(), "How long a scratch file survives before the cleanup loop removes it")
	fs.StringVar(&cli.RateLimitWindow, "rate-limit-window", config.DefaultRateLimitWindow.String(), "Sliding window duration for the per-client rate limiter")
	fs.IntVar(&cli.RateLimitMax, "rate-limit-max", config.DefaultRateLimitMax, "Maximum requests per client per rate-limit window")
	fs.StringVar(&cli.BrokerURL, "broker-url", "in-process", "Broker URL reported by GET /system/status")
	fs.StringVar(&cli.ResultBackend, "result-backend", "postgres", "Result backend reported by GET /system/status")
	fs.StringVar(&cli.APIVersion, "api-version", "v1", "API version string reported by GET /system/status")
	fs.IntVar(&cli.PromPort, "prom-port", 9090, "Port to serve Prometheus metrics on")
	fs.StringVar(&cli.TranscribeBackend, "transcribe-backend", string(transcribe.BackendNoop), "Transcription backend: openai_whisper, faster_whisper, whisper_cpp, whisper_timestamped, or noop")
	fs.StringVar(&cli.TranscribeSidecarURL, "transcribe-sidecar-url", "", "Base URL of the transcription sidecar HTTP service")
	fs.StringVar(&cli.DiarizeBackend, "diarize-backend", string(diarize.BackendNoop), "Diarization backend: pyannote, speechbrain, or noop")
	fs.StringVar(&cli.DiarizeHuggingFaceToken, "diarize-hf-token", "", "HuggingFace token for the pyannote diarization backend")
	_ = fs.String("config", "", "config file (optional)")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("REFRAME"),
	); err != nil {
		glog.Fatalf("error parsing cli: %s", err)
	}

	tmpTTL, err := time.ParseDuration(cli.TmpTTL)
	if err != nil {
		glog.Fatalf("invalid -tmp-ttl: %s", err)
	}
	rateLimitWindow, err := time.ParseDuration(cli.RateLimitWindow)
	if err != nil {
		glog.Fatalf("invalid -rate-limit-window: %s", err)
	}

	st, err := store.Open(cli.DatabaseURL)
	if err != nil {
		glog.Fatalf("error opening store: %s", err)
	}
	defer st.Close()

	backend, err := storage.New(storage.Options{
		Backend:       cli.StorageBackend,
		MediaRoot:     cli.MediaRoot,
		S3Bucket:      cli.S3Bucket,
		S3Region:      cli.S3Region,
		PublicBaseURL: cli.S3PublicBaseURL,
		PresignExpiry: config.DefaultPresignExpiry,
		OfflineMode:   cli.OfflineMode,
	})
	if err != nil {
		glog.Fatalf("error constructing storage backend: %s", err)
	}

	group, ctx := errgroup.WithContext(context.Background())

	brk := broker.NewInProcessBroker(ctx, cli.MaxConcurrentJobs, "api-server")

	diarizeCfg := diarize.DefaultConfig()
	diarizeCfg.Backend = diarize.Backend(cli.DiarizeBackend)
	diarizeCfg.HuggingFaceToken = cli.DiarizeHuggingFaceToken

	pool := worker.NewPool(worker.Config{
		Store:                st,
		Backend:              backend,
		Broker:               brk,
		MediaRoot:            cli.MediaRoot,
		TranscribeBackend:    transcribe.Backend(cli.TranscribeBackend),
		TranscribeSidecarURL: cli.TranscribeSidecarURL,
		Diarize:              diarizeCfg,
		OfflineMode:          cli.OfflineMode,
		// Translator is left nil: runTranslateSubtitles probes for a local
		// translator per job and falls back to an identity no-op with a
		// warning when one isn't reachable, per spec.md §8 scenario 3.
	})
	pool.RegisterAll()

	cleanup := worker.NewCleanupLoop(st, cli.MediaRoot, tmpTTL, config.DefaultTmpCleanupInterval)
	group.Go(func() error {
		cleanup.Run(ctx)
		return nil
	})

	group.Go(func() error {
		return metrics.ListenAndServe(cli.PromPort)
	})

	srv := &api.Server{
		Store:             st,
		Backend:           backend,
		Broker:            brk,
		MediaRoot:         cli.MediaRoot,
		APIToken:          cli.APIToken,
		MaxConcurrentJobs: cli.MaxConcurrentJobs,
		MaxUploadBytes:    cli.MaxUploadBytes,
		RateLimitWindow:   rateLimitWindow,
		RateLimitMax:      cli.RateLimitMax,
		APIVersion:        cli.APIVersion,
		OfflineMode:       cli.OfflineMode,
		StorageBackend:    cli.StorageBackend,
		BrokerURL:         cli.BrokerURL,
		ResultBackend:     cli.ResultBackend,
	}

	listen := fmt.Sprintf("0.0.0.0:%d", cli.Port)
	httpServer := &http.Server{Addr: listen, Handler: srv.Router()}

	group.Go(func() error {
		glog.Infof("api-server listening on %s", listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return handleSignals(ctx)
	})

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	if err := group.Wait(); err != nil {
		glog.Infof("shutdown complete, reason: %s", err)
	}
}

func handleSignals(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	select {
	case s := <-c:
		return fmt.Errorf("caught signal=%v", s)
	case <-ctx.Done():
		return nil
	}
}
