package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/log"
)

// ListenAndServe starts the Prometheus /metrics endpoint used by both the
// api-server and worker binaries.
func ListenAndServe(promPort int) error {
	listen := fmt.Sprintf("0.0.0.0:%d", promPort)
	http.Handle("/metrics", promhttp.Handler())

	log.LogNoRequestID(
		"starting prometheus metrics listener",
		"version", config.Version,
		"host", listen,
	)
	return http.ListenAndServe(listen, nil)
}
