package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/metrics"
)

// CapacityMiddleware rejects new job creation requests once the number of
// jobs in flight (queued + running) reaches maxConcurrentJobs, so the worker
// pool's goroutine count stays bounded regardless of request volume.
type CapacityMiddleware struct {
	maxConcurrentJobs int64
	requestsInFlight  atomic.Int64
	jobCounter        JobCounter
}

// JobCounter reports how many jobs are currently queued or running, letting
// the middleware account for work already accepted before this request.
type JobCounter interface {
	InFlightJobCount() int
}

func NewCapacityMiddleware(maxConcurrentJobs int, counter JobCounter) *CapacityMiddleware {
	return &CapacityMiddleware{maxConcurrentJobs: int64(maxConcurrentJobs), jobCounter: counter}
}

func (c *CapacityMiddleware) HasCapacity(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		metrics.Metrics.HTTPRequestsInFlight.Add(1)
		defer metrics.Metrics.HTTPRequestsInFlight.Add(-1)

		inFlight := int64(c.jobCounter.InFlightJobCount())
		reserved := c.requestsInFlight.Add(1)
		defer c.requestsInFlight.Add(-1)

		if inFlight+reserved > c.maxConcurrentJobs {
			errors.WriteHTTPRateLimited(w, "too many jobs in flight, try again later")
			return
		}

		next(w, r, ps)
	}
}
