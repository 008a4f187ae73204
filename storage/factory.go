package storage

import (
	"time"

	"github.com/livepeer/reframe-media/errors"
)

// Options configures the backend returned by New.
type Options struct {
	Backend       string // "local", "s3", or "r2"
	MediaRoot     string
	S3Bucket      string
	S3Prefix      string
	S3Region      string
	S3EndpointURL string
	PublicBaseURL string
	PresignExpiry time.Duration
	OfflineMode   bool
}

// New builds the configured Backend. Per the offline policy, constructing
// anything other than Local fails when OfflineMode is set.
func New(opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "local":
		return NewLocal(opts.MediaRoot), nil
	case "s3", "r2":
		if opts.OfflineMode {
			return nil, errors.NewValidationError("cannot construct a remote storage backend while OFFLINE_MODE is set", nil)
		}
		return NewS3(opts.S3Bucket, opts.S3Prefix, opts.S3Region, opts.S3EndpointURL, opts.PublicBaseURL, opts.PresignExpiry)
	default:
		return nil, errors.NewValidationError("unknown storage backend: "+opts.Backend, nil)
	}
}
