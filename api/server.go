package api

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/julienschmidt/httprouter"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/middleware"
	"github.com/livepeer/reframe-media/storage"
	"github.com/livepeer/reframe-media/store"
	"github.com/livepeer/reframe-media/worker"
)

// Server is the C4 job API: it validates requests, persists jobs/assets
// through the store, and dispatches work onto the broker. It holds no
// pipeline logic of its own — that's C5's job.
type Server struct {
	Store     *store.Store
	Backend   storage.Backend
	Broker    broker.Broker
	MediaRoot string

	APIToken          string
	MaxConcurrentJobs int
	MaxUploadBytes    int64
	RateLimitWindow   time.Duration
	RateLimitMax      int

	APIVersion     string
	OfflineMode    bool
	StorageBackend string
	BrokerURL      string
	ResultBackend  string

	downloader *retryablehttp.Client
}

// downloadClient lazily builds the retryablehttp client used to pull
// remote-backed assets into the bundle zip, reusing the worker package's
// retry tuning.
func (s *Server) downloadClient() *retryablehttp.Client {
	if s.downloader == nil {
		s.downloader = worker.NewDownloadClient()
	}
	return s.downloader
}

// InFlightJobCount implements middleware.JobCounter.
func (s *Server) InFlightJobCount() int {
	queued, err := s.Store.ListJobs(store.JobStatusQueued)
	if err != nil {
		return 0
	}
	running, err := s.Store.ListJobs(store.JobStatusRunning)
	if err != nil {
		return 0
	}
	return len(queued) + len(running)
}

// Router builds the full route table with the shared middleware chain
// (request logging -> CORS -> auth -> rate limit), matching spec §4.4.
func (s *Server) Router() *httprouter.Router {
	r := httprouter.New()

	limiter := middleware.NewRateLimiter(s.RateLimitWindow, s.RateLimitMax)
	capacity := middleware.NewCapacityMiddleware(s.MaxConcurrentJobs, s)

	wrap := func(h httprouter.Handle) httprouter.Handle {
		h = limiter.Enforce(middleware.ClientIP, h)
		h = middleware.IsAuthorized(s.APIToken, h)
		h = middleware.AllowCORS()(h)
		h = middleware.LogRequest()(h)
		return h
	}
	wrapJobCreate := func(h httprouter.Handle) httprouter.Handle {
		return wrap(capacity.HasCapacity(h))
	}

	r.POST("/captions/jobs", wrapJobCreate(s.createCaptionsJob))
	r.POST("/subtitles/translate", wrapJobCreate(s.createTranslateSubtitlesJob(false)))
	r.POST("/utilities/translate-subtitle", wrapJobCreate(s.createTranslateSubtitlesJob(true)))
	r.POST("/subtitles/style", wrapJobCreate(s.createStyleSubtitlesJob))
	r.POST("/shorts/jobs", wrapJobCreate(s.createShortsJob))
	r.POST("/utilities/merge-av", wrapJobCreate(s.createMergeAVJob))
	r.POST("/utilities/cut-clip", wrapJobCreate(s.createCutClipJob))

	r.GET("/jobs/:id", wrap(s.getJob))
	r.GET("/jobs", wrap(s.listJobs))
	r.POST("/jobs/:id/cancel", wrap(s.cancelJob))
	r.DELETE("/jobs/:id", wrap(s.deleteJob))
	r.GET("/jobs/:id/bundle", wrap(s.bundleJob))

	r.POST("/assets/upload", wrap(s.uploadAsset))
	r.GET("/assets", wrap(s.listAssets))
	r.GET("/assets/:id", wrap(s.getAsset))
	r.DELETE("/assets/:id", wrap(s.deleteAsset))
	r.GET("/assets/:id/download", wrap(s.downloadAsset))
	r.GET("/assets/:id/download-url", wrap(s.downloadAssetURL))

	r.GET("/system/status", wrap(s.systemStatus))

	return r
}
