package api

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/livepeer/reframe-media/broker"
)

type systemStatusResponse struct {
	APIVersion     string       `json:"api_version"`
	OfflineMode    bool         `json:"offline_mode"`
	StorageBackend string       `json:"storage_backend"`
	BrokerURL      string       `json:"broker_url"`
	ResultBackend  string       `json:"result_backend"`
	Worker         workerStatus `json:"worker"`
}

type workerStatus struct {
	PingOK     bool     `json:"ping_ok"`
	Workers    []string `json:"workers,omitempty"`
	SystemInfo string   `json:"system_info,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// systemStatus reports the shape spec.md §4.4 requires for GET
// /system/status: api_version/offline_mode/storage_backend/broker_url/
// result_backend plus a worker sub-object from a live broker Ping +
// SystemInfo round-trip.
func (s *Server) systemStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := systemStatusResponse{
		APIVersion:     s.APIVersion,
		OfflineMode:    s.OfflineMode,
		StorageBackend: s.StorageBackend,
		BrokerURL:      s.BrokerURL,
		ResultBackend:  s.ResultBackend,
	}

	if err := s.Broker.Ping(r.Context()); err != nil {
		resp.Worker = workerStatus{PingOK: false, Error: err.Error()}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	info, err := s.Broker.SystemInfo(r.Context())
	if err != nil {
		resp.Worker = workerStatus{PingOK: true, Error: err.Error()}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Worker = workerStatus{
		PingOK:     true,
		Workers:    info.Workers,
		SystemInfo: systemInfoSummary(info),
	}
	writeJSON(w, http.StatusOK, resp)
}

func systemInfoSummary(info broker.SystemInfo) string {
	return fmt.Sprintf("capacity=%d in_flight=%d", info.Capacity, info.InFlight)
}
