package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/errors"
)

// CreateJob inserts a Job row with status=queued. It is the first half of
// the two-step job creation contract: the broker dispatch and the
// subsequent SetTaskID call happen outside this method, after commit, so a
// broker outage leaves a consistent queued row with no task_id.
func (s *Store) CreateJob(j Job) (Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.Status = JobStatusQueued
	j.Progress = 0
	if j.Payload == nil {
		j.Payload = map[string]interface{}{}
	}
	now := config.Clock.GetTime()
	j.CreatedAt, j.UpdatedAt = now, now

	payloadJSON, err := json.Marshal(j.Payload)
	if err != nil {
		return Job{}, errors.NewValidationError("invalid payload", err.Error())
	}

	_, err = s.db.Exec(
		`INSERT INTO jobs (id, job_type, task_id, status, progress, error, payload, input_asset_id, output_asset_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		j.ID, j.JobType, nullableString(j.TaskID), j.Status, j.Progress, nullableString(j.Error),
		payloadJSON, nullableString(j.InputAssetID), nullableString(j.OutputAssetID), j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return Job{}, errors.NewServerError("failed to insert job", err)
	}
	return j, nil
}

// SetTaskID records the broker correlation id after a successful dispatch.
// Per the job creation contract, this is set exactly once.
func (s *Store) SetTaskID(jobID, taskID string) error {
	res, err := s.db.Exec(
		`UPDATE jobs SET task_id = $1, updated_at = $2 WHERE id = $3`,
		taskID, config.Clock.GetTime(), jobID)
	if err != nil {
		return errors.NewServerError("failed to set task id", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("job %s not found", jobID))
	}
	return nil
}

func (s *Store) GetJob(id string) (Job, error) {
	row := s.db.QueryRow(
		`SELECT id, job_type, task_id, status, progress, error, payload, input_asset_id, output_asset_id, created_at, updated_at
		 FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (s *Store) ListJobs(status JobStatus) ([]Job, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = s.db.Query(
			`SELECT id, job_type, task_id, status, progress, error, payload, input_asset_id, output_asset_id, created_at, updated_at
			 FROM jobs WHERE status = $1 ORDER BY created_at DESC`, status)
	} else {
		rows, err = s.db.Query(
			`SELECT id, job_type, task_id, status, progress, error, payload, input_asset_id, output_asset_id, created_at, updated_at
			 FROM jobs ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, errors.NewServerError("failed to list jobs", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scannable) (Job, error) {
	var j Job
	var taskID, errStr, inputAssetID, outputAssetID sql.NullString
	var payloadRaw []byte

	err := row.Scan(&j.ID, &j.JobType, &taskID, &j.Status, &j.Progress, &errStr, &payloadRaw,
		&inputAssetID, &outputAssetID, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return Job{}, errors.NewNotFoundError("job not found")
	}
	if err != nil {
		return Job{}, errors.NewServerError("failed to scan job", err)
	}

	j.TaskID = taskID.String
	j.Error = errStr.String
	j.InputAssetID = inputAssetID.String
	j.OutputAssetID = outputAssetID.String
	j.Payload = map[string]interface{}{}
	if len(payloadRaw) > 0 {
		if err := json.Unmarshal(payloadRaw, &j.Payload); err != nil {
			return Job{}, errors.NewServerError("failed to decode job payload", err)
		}
	}
	return j, nil
}

// JobUpdate describes a partial update to a Job row. Only non-nil fields
// are applied. Payload is shallow-merged: new keys overwrite, nested
// objects are replaced wholesale (not deep-merged).
type JobUpdate struct {
	Status        *JobStatus
	Progress      *float64
	Error         *string
	PayloadMerge  map[string]interface{}
	OutputAssetID *string
}

// UpdateJob refuses to mutate a job whose current status is terminal,
// matching the invariant that terminal states are sinks.
func (s *Store) UpdateJob(id string, u JobUpdate) (Job, error) {
	current, err := s.GetJob(id)
	if err != nil {
		return Job{}, err
	}
	if current.Status.Terminal() {
		return Job{}, errors.NewConflictError(fmt.Sprintf("job %s is already in terminal status %s", id, current.Status))
	}

	if u.Status != nil {
		current.Status = *u.Status
	}
	if u.Progress != nil {
		// Progress never moves backwards: a lower value is ignored.
		if p := clampProgress(*u.Progress); p > current.Progress {
			current.Progress = p
		}
	}
	if current.Status.Terminal() {
		// Terminal transitions always force progress to 1.0, even if the
		// caller didn't pass an explicit Progress value.
		current.Progress = 1.0
	}
	if u.Error != nil {
		current.Error = *u.Error
	}
	if u.OutputAssetID != nil {
		current.OutputAssetID = *u.OutputAssetID
	}
	for k, v := range u.PayloadMerge {
		current.Payload[k] = v
	}
	current.UpdatedAt = config.Clock.GetTime()

	payloadJSON, err := json.Marshal(current.Payload)
	if err != nil {
		return Job{}, errors.NewServerError("failed to encode payload", err)
	}

	_, err = s.db.Exec(
		`UPDATE jobs SET status=$1, progress=$2, error=$3, payload=$4, output_asset_id=$5, updated_at=$6 WHERE id=$7`,
		current.Status, current.Progress, nullableString(current.Error), payloadJSON,
		nullableString(current.OutputAssetID), current.UpdatedAt, id,
	)
	if err != nil {
		return Job{}, errors.NewServerError("failed to update job", err)
	}
	return current, nil
}

// CancelJob transitions a non-terminal job to cancelled. Cancelling an
// already-cancelled (or otherwise terminal) job is a CONFLICT, not a no-op.
func (s *Store) CancelJob(id string) (Job, error) {
	cancelled := JobStatusCancelled
	return s.UpdateJob(id, JobUpdate{Status: &cancelled})
}

// DeleteJob removes the job row. The caller is responsible for enforcing
// the CONFLICT-if-non-terminal rule before calling this.
func (s *Store) DeleteJob(id string) error {
	res, err := s.db.Exec(`DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return errors.NewServerError("failed to delete job", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("job %s not found", id))
	}
	return nil
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
