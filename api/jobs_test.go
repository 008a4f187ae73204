package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/livepeer/reframe-media/broker"
	"github.com/livepeer/reframe-media/config"
	"github.com/livepeer/reframe-media/store"
)

// stubBroker is a hand-written broker.Broker for handler-level tests, in
// place of spinning up the in-process broker's worker pool.
type stubBroker struct {
	taskID  string
	sendErr error
	sent    []string
}

func (b *stubBroker) RegisterHandler(string, broker.Handler) {}

func (b *stubBroker) SendTask(ctx context.Context, name string, args ...interface{}) (string, error) {
	b.sent = append(b.sent, name)
	if b.sendErr != nil {
		return "", b.sendErr
	}
	return b.taskID, nil
}

func (b *stubBroker) Subscribe(taskID string) (<-chan broker.Event, func()) {
	ch := make(chan broker.Event)
	return ch, func() {}
}

func (b *stubBroker) Ping(ctx context.Context) error { return nil }

func (b *stubBroker) SystemInfo(ctx context.Context) (broker.SystemInfo, error) {
	return broker.SystemInfo{}, nil
}

func newTestServer(t *testing.T, db *sql.DB, brk broker.Broker) *Server {
	t.Helper()
	return &Server{
		Store:  store.New(db),
		Broker: brk,
	}
}

func doJSON(h httprouter.Handle, method, path string, body interface{}, ps httprouter.Params) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h(rec, req, ps)
	return rec
}

func TestCreateCaptionsJobHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1000, 0).UTC()}
	brk := &stubBroker{taskID: "task-1"}
	s := newTestServer(t, db, brk)

	mock.ExpectExec("INSERT INTO jobs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE jobs SET task_id").WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(s.createCaptionsJob, http.MethodPost, "/captions/jobs",
		map[string]interface{}{"video_asset_id": "asset-1"}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var job store.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	require.Equal(t, store.JobStatusQueued, job.Status)
	require.Equal(t, "task-1", job.TaskID)
	require.Equal(t, []string{broker.TaskGenerateCaptions}, brk.sent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCaptionsJobRejectsMissingVideoAssetID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	brk := &stubBroker{taskID: "task-1"}
	s := newTestServer(t, db, brk)

	rec := doJSON(s.createCaptionsJob, http.MethodPost, "/captions/jobs", map[string]interface{}{}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "VALIDATION_ERROR", envelope.Code)
	require.Empty(t, brk.sent, "broker must never be dispatched on a validation failure")
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateJobSurvivesBrokerFailure covers spec.md §9's contract: a broker
// outage after the insert leaves a queued row with no task_id, not a
// rejected request.
func TestCreateJobSurvivesBrokerFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	brk := &stubBroker{sendErr: context.DeadlineExceeded}
	s := newTestServer(t, db, brk)

	mock.ExpectExec("INSERT INTO jobs").WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(s.createCaptionsJob, http.MethodPost, "/captions/jobs",
		map[string]interface{}{"video_asset_id": "asset-1"}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var job store.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	require.Equal(t, store.JobStatusQueued, job.Status)
	require.Empty(t, job.TaskID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCutClipJobRequiresStartAndEnd(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestServer(t, db, &stubBroker{})

	rec := doJSON(s.createCutClipJob, http.MethodPost, "/utilities/cut-clip",
		map[string]interface{}{"video_asset_id": "asset-1"}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func jobRow(id string, status store.JobStatus, outputAssetID string, payload string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "job_type", "task_id", "status", "progress", "error", "payload", "input_asset_id", "output_asset_id", "created_at", "updated_at"}).
		AddRow(id, "captions", "task-1", status, 1.0, "", []byte(payload), "asset-in", outputAssetID, time.Now(), time.Now())
}

func TestDeleteJobRefusesNonTerminalJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestServer(t, db, &stubBroker{})

	mock.ExpectQuery("SELECT .* FROM jobs WHERE id = \\$1").WillReturnRows(jobRow("job-1", store.JobStatusRunning, "", "{}"))

	rec := doJSON(s.deleteJob, http.MethodDelete, "/jobs/job-1", nil, httprouter.Params{{Key: "id", Value: "job-1"}})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJobCascadesAssetsOnceTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestServer(t, db, &stubBroker{})

	mock.ExpectQuery("SELECT .* FROM jobs WHERE id = \\$1").WillReturnRows(jobRow("job-1", store.JobStatusCompleted, "asset-out", "{}"))
	mock.ExpectExec("DELETE FROM jobs WHERE id = \\$1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM jobs WHERE input_asset_id").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT payload FROM jobs WHERE payload IS NOT NULL").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec("DELETE FROM media_assets WHERE id = \\$1").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/jobs/job-1?delete_assets=true", nil)
	rec := httptest.NewRecorder()
	s.deleteJob(rec, req, httprouter.Params{{Key: "id", Value: "job-1"}})

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
