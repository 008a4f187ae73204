package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/log"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

// LogRequest assigns a request id, logs the outcome of every request, and
// recovers from panics so a single bad handler can't take the server down.
func LogRequest() func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		fn := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.NewString()
				r.Header.Set("X-Request-Id", requestID)
			}
			w.Header().Set("X-Request-Id", requestID)
			log.AddContext(requestID, "method", r.Method, "uri", r.URL.RequestURI())

			defer func() {
				if rec := recover(); rec != nil {
					errors.WriteHTTPInternalServerError(wrapped, "internal server error", nil)
					log.Log(requestID, "panic handling request", "err", rec, "trace", string(debug.Stack()))
				}
			}()

			next(wrapped, r, ps)
			log.Log(requestID, "request completed",
				"remote", r.RemoteAddr,
				"proto", r.Proto,
				"duration", time.Since(start).String(),
				"status", wrapped.status,
			)
		}

		return fn
	}
}

// RequestID extracts the request id assigned by LogRequest, if any.
func RequestID(r *http.Request) string {
	return r.Header.Get("X-Request-Id")
}
