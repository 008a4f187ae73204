// Command worker runs the C5 pipeline runtime standalone, registering every
// job-type handler on its own in-process broker instance and sweeping
// scratch files on an interval. Because broker.InProcessBroker dispatches
// only within the process that created it, a worker started this way never
// receives tasks from a separately-running api-server; it exists so the
// codebase's process boundaries match the teacher's api/worker split and
// so swapping in a real out-of-process broker (broker.Broker is the seam)
// only changes this file's wiring, not its callers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"

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

	fs := flag.NewFlagSet("worker", flag.ExitOnError)
	cli := config.Cli{}

	fs.StringVar(&cli.DatabaseURL, "database-url", "", "Postgres connection string")
	fs.StringVar(&cli.MediaRoot, "media-root", config.DefaultMediaRoot, "Root directory for local media storage and scratch files")
	fs.StringVar(&cli.StorageBackend, "storage-backend", "local", "Storage backend: local, s3, or r2")
	fs.StringVar(&cli.S3Bucket, "s3-bucket", "", "S3/R2 bucket name")
	fs.StringVar(&cli.S3Region, "s3-region", "", "S3/R2 region")
	fs.StringVar(&cli.S3PublicBaseURL, "s3-public-base-url", "", "Public base URL for constructing non-presigned download links")
	fs.BoolVar(&cli.OfflineMode, "offline-mode", false, "Disallow any backend requiring outbound network access")
	fs.IntVar(&cli.MaxConcurrentJobs, "max-concurrent-jobs", config.DefaultMaxConcurrentJobs, "Maximum number of jobs run concurrently")
	fs.StringVar(&cli.TmpTTL, "tmp-ttl", config.DefaultTmpTTL.String(), "How long a scratch file survives before the cleanup loop removes it")
	fs.StringVar(&cli.TranscribeBackend, "transcribe-backend", string(transcribe.BackendNoop), "Transcription backend: openai_whisper, faster_whisper, whisper_cpp, whisper_timestamped, or noop")
	fs.StringVar(&cli.TranscribeSidecarURL, "transcribe-sidecar-url", "", "Base URL of the transcription sidecar HTTP service")
	fs.StringVar(&cli.DiarizeBackend, "diarize-backend", string(diarize.BackendNoop), "Diarization backend: pyannote, speechbrain, or noop")
	fs.StringVar(&cli.DiarizeHuggingFaceToken, "diarize-hf-token", "", "HuggingFace token for the pyannote diarization backend")
	fs.IntVar(&cli.PromPort, "prom-port", 9091, "Port to serve Prometheus metrics on")
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

	brk := broker.NewInProcessBroker(ctx, cli.MaxConcurrentJobs, "worker")

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

	group.Go(func() error {
		return handleSignals(ctx)
	})

	glog.Infof("worker started, max_concurrent_jobs=%d transcribe_backend=%s diarize_backend=%s", cli.MaxConcurrentJobs, cli.TranscribeBackend, cli.DiarizeBackend)

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
