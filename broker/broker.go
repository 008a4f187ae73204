package broker

import "context"

// Handler executes one task. publish lets the handler emit best-effort
// PROGRESS events for subscribers; the store write is still the handler's
// responsibility and remains authoritative.
type Handler func(ctx context.Context, task Task, publish func(Event)) error

// Broker is the seam between job creation (C4) and task execution (C5).
// SendTask must be called only after the Job row's transaction commits, so
// a broker outage leaves a consistent `queued` row rather than an
// orphaned task (spec §5).
type Broker interface {
	// RegisterHandler binds a task name to its executor. The worker
	// runtime calls this once per job type at startup; SendTask for an
	// unregistered name fails.
	RegisterHandler(name string, h Handler)
	SendTask(ctx context.Context, name string, args ...interface{}) (taskID string, err error)
	Subscribe(taskID string) (events <-chan Event, unsubscribe func())
	Ping(ctx context.Context) error
	SystemInfo(ctx context.Context) (SystemInfo, error)
}

// SystemInfo summarizes the worker pool for GET /system/status.
type SystemInfo struct {
	Workers   []string
	Capacity  int
	InFlight  int
}
