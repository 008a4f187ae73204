package worker

import (
	"time"

	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/store"
)

// RetryConfig controls the exponential backoff applied to external tool
// invocations (ffmpeg/ffprobe, ML sidecar calls). Matches
// JOB_RETRY_MAX_ATTEMPTS/JOB_RETRY_BASE_DELAY_SECONDS from spec §6.2.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// withRetry runs step up to cfg.MaxAttempts times with delay
// base·2^(n-1) between attempts (no jitter — exact doubling, matching
// spec.md's literal formula). Each attempt updates job.payload with
// {retry_step, retry_attempt, retry_max_attempts} so a client polling the
// job can see which attempt is in flight. errors.IsUnretriable short-circuits
// further attempts (a malformed input will never succeed on retry).
func withRetry(s *store.Store, jobID, step string, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		_, _ = s.UpdateJob(jobID, store.JobUpdate{PayloadMerge: map[string]interface{}{
			"retry_step":         step,
			"retry_attempt":      attempt,
			"retry_max_attempts": cfg.MaxAttempts,
		}})

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.IsUnretriable(lastErr) {
			return lastErr
		}
		if attempt < cfg.MaxAttempts {
			delay := cfg.BaseDelay * time.Duration(1<<uint(attempt-1))
			time.Sleep(delay)
		}
	}
	return lastErr
}
