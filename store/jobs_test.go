package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/livepeer/reframe-media/config"
	"github.com/stretchr/testify/require"
)

func TestCreateJobInsertsQueuedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1000, 0).UTC()}
	s := New(db)

	mock.ExpectExec("INSERT INTO jobs").WillReturnResult(sqlmock.NewResult(1, 1))

	job, err := s.CreateJob(Job{JobType: JobTypeCaptions, InputAssetID: "asset-1"})
	require.NoError(t, err)
	require.Equal(t, JobStatusQueued, job.Status)
	require.Equal(t, 0.0, job.Progress)
	require.Empty(t, job.TaskID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJobRefusesTerminalTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	rows := sqlmock.NewRows([]string{"id", "job_type", "task_id", "status", "progress", "error", "payload", "input_asset_id", "output_asset_id", "created_at", "updated_at"}).
		AddRow("job-1", "captions", "task-1", "completed", 1.0, "", []byte(`{}`), "asset-1", "asset-2", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM jobs WHERE id = \\$1").WillReturnRows(rows)

	cancelled := JobStatusCancelled
	_, err = s.UpdateJob("job-1", JobUpdate{Status: &cancelled})
	require.Error(t, err)
	require.Contains(t, err.Error(), "CONFLICT")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJobForcesProgressOneOnTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db)
	rows := sqlmock.NewRows([]string{"id", "job_type", "task_id", "status", "progress", "error", "payload", "input_asset_id", "output_asset_id", "created_at", "updated_at"}).
		AddRow("job-1", "captions", "task-1", "running", 0.5, "", []byte(`{}`), "asset-1", "", time.Now(), time.Now())
	mock.ExpectQuery("SELECT .* FROM jobs WHERE id = \\$1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE jobs SET").WillReturnResult(sqlmock.NewResult(0, 1))

	completed := JobStatusCompleted
	job, err := s.UpdateJob("job-1", JobUpdate{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, 1.0, job.Progress)
	require.NoError(t, mock.ExpectationsWereMet())
}
