package worker

import (
	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/metrics"
	"github.com/livepeer/reframe-media/store"
)

// Reporter is the twofold progress channel spec §4.5 describes: the store
// write is authoritative and always happens; the broker event is
// best-effort and only serves subscribers polling less eagerly than the
// DB.
type Reporter struct {
	store  *store.Store
	publish func(broker.Event)
	jobID  string
}

func newReporter(s *store.Store, jobID string, publish func(broker.Event)) *Reporter {
	return &Reporter{store: s, publish: publish, jobID: jobID}
}

// Report persists progress (clamped, monotonic enforcement lives in
// store.UpdateJob) and best-effort-emits a PROGRESS event carrying the same
// meta.
func (r *Reporter) Report(progress float64, meta map[string]interface{}) error {
	update := store.JobUpdate{Progress: &progress}
	if len(meta) > 0 {
		update.PayloadMerge = meta
	}
	if _, err := r.store.UpdateJob(r.jobID, update); err != nil {
		return err
	}
	if r.publish != nil {
		r.publish(broker.Event{Status: broker.EventProgress, Progress: progress, Meta: meta})
	}
	return nil
}

// MarkRunning is step 1 of the per-task skeleton: update_job(status=running,
// progress=0.1).
func (r *Reporter) MarkRunning() error {
	status := store.JobStatusRunning
	progress := 0.1
	_, err := r.store.UpdateJob(r.jobID, store.JobUpdate{Status: &status, Progress: &progress})
	if err == nil {
		metrics.Metrics.JobsQueued.Dec()
		metrics.Metrics.JobsInFlight.Add(1)
	}
	return err
}

// MarkCompleted is step 4: terminal success with outputs.
func (r *Reporter) MarkCompleted(outputAssetID string, payload map[string]interface{}) error {
	status := store.JobStatusCompleted
	progress := 1.0
	update := store.JobUpdate{Status: &status, Progress: &progress, PayloadMerge: payload}
	if outputAssetID != "" {
		update.OutputAssetID = &outputAssetID
	}
	_, err := r.store.UpdateJob(r.jobID, update)
	if err == nil {
		metrics.Metrics.JobsInFlight.Add(-1)
	}
	return err
}

// MarkFailed is step 5: terminal failure. Per spec, a terminal failure must
// never be swallowed into completed.
func (r *Reporter) MarkFailed(errMsg string) error {
	status := store.JobStatusFailed
	_, err := r.store.UpdateJob(r.jobID, store.JobUpdate{Status: &status, Error: &errMsg})
	if err == nil {
		metrics.Metrics.JobsInFlight.Add(-1)
	}
	return err
}

// MarkCancelled records the UserCancelled outcome. The Job row was already
// flipped to cancelled by the API; this only ensures progress/payload state
// is consistent with the point of interruption.
func (r *Reporter) MarkCancelled(payload map[string]interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	_, err := r.store.UpdateJob(r.jobID, store.JobUpdate{PayloadMerge: payload})
	return err
}

// addWarning appends a warning string to payload.warnings[] without
// clobbering existing ones. Store.UpdateJob's PayloadMerge replaces keys
// wholesale, so the caller must read-modify-write through the Job's
// current payload.
func addWarning(s *store.Store, jobID, warning string) error {
	job, err := s.GetJob(jobID)
	if err != nil {
		return err
	}
	var warnings []interface{}
	if existing, ok := job.Payload["warnings"].([]interface{}); ok {
		warnings = existing
	}
	warnings = append(warnings, warning)
	_, err = s.UpdateJob(jobID, store.JobUpdate{PayloadMerge: map[string]interface{}{"warnings": warnings}})
	return err
}
