package broker

// EventStatus mirrors the task-state vocabulary a Celery-style broker
// would emit.
type EventStatus string

const (
	EventPending EventStatus = "PENDING"
	EventStarted EventStatus = "STARTED"
	EventProgress EventStatus = "PROGRESS"
	EventSuccess EventStatus = "SUCCESS"
	EventFailure EventStatus = "FAILURE"
)

// Event is a best-effort progress notification for a task. The store
// remains the source of truth for Job state (spec §4.5); these events only
// serve subscribers that want to observe progress without polling.
type Event struct {
	TaskID   string
	Status   EventStatus
	Progress float64
	Meta     map[string]interface{}
}
