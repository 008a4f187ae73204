package config

// Cli holds every flag/env-var driven setting shared by the API server and
// worker binaries. Individual cmd/ packages register only the subset of
// fields relevant to them.
type Cli struct {
	Port     int
	APIToken string

	DatabaseURL string

	MediaRoot      string
	StorageBackend string // "local", "s3", or "r2"
	S3Bucket       string
	S3Region       string
	S3PublicBaseURL string

	OfflineMode bool

	MaxConcurrentJobs int
	MaxUploadBytes    int64
	TmpTTL            string // parsed with time.ParseDuration

	RateLimitWindow string
	RateLimitMax    int

	BrokerURL     string
	ResultBackend string
	APIVersion    string

	PromPort int

	TranscribeBackend    string
	TranscribeSidecarURL string

	DiarizeBackend          string
	DiarizeHuggingFaceToken string
}
