package worker

import (
	"errors"
	"fmt"

	"github.com/livepeer/reframe-media/store"
)

// UserCancelled is the sentinel a pipeline returns when it observes the Job
// row flipped to cancelled at a checkpoint (spec §5). It is not a failure:
// the caller must leave the Job in `cancelled`, not overwrite it to
// `failed`.
var UserCancelled = errors.New("job cancelled by user")

// checkpoint fetches the Job's current status and returns UserCancelled if
// it has already been flipped to cancelled out-of-band. Call this before
// each major pipeline step per spec §5.
func checkpoint(s *store.Store, jobID string) error {
	job, err := s.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("checking job status at checkpoint: %w", err)
	}
	if job.Status == store.JobStatusCancelled {
		return UserCancelled
	}
	return nil
}
