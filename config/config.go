package config

import "time"

var Version string

// Used so tests can generate fixed timestamps instead of time.Now().
var Clock TimestampGenerator = RealTimestampGenerator{}

// Default on-disk root for the local storage backend.
const DefaultMediaRoot = "/data/media"

// Default TTL for scratch files under MediaRoot/tmp before the worker's
// cleanup loop removes them.
var DefaultTmpTTL = 24 * time.Hour

const DefaultTmpCleanupInterval = time.Hour

// Presigned URL expiry for the S3 storage backend.
const DefaultPresignExpiry = 7 * 24 * time.Hour

const MinPresignExpiry = 60 * time.Second

// Maximum number of jobs the worker pool will run concurrently.
const DefaultMaxConcurrentJobs = 4

// Maximum allowed size for an uploaded input asset.
const MaxInputFileSizeBytes = 10 * 1024 * 1024 * 1024 // 10 GiB

// Sliding window rate limiter defaults.
const DefaultRateLimitWindow = time.Minute
const DefaultRateLimitMax = 60

var DefaultBundleTags = []string{"reframe", "shorts"}
