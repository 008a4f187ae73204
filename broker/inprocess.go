package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/livepeer/reframe-media/log"
)

// InProcessBroker is an in-process stand-in for a real message broker
// (Celery/Redis/RabbitMQ in the system this was modeled on): task dispatch
// and progress events happen over Go channels within a single process, but
// the task-name/args contract and PROGRESS-event shape match what a real
// broker boundary would carry, so a future out-of-process broker is a
// drop-in swap behind the Broker interface.
type InProcessBroker struct {
	mu       sync.Mutex
	handlers map[string]Handler
	subs     map[string][]chan Event

	group    *errgroup.Group
	groupCtx context.Context

	workerName  string
	concurrency int
	inFlight    int
}

// NewInProcessBroker creates a broker whose dispatch loop runs at most
// concurrency tasks at once, mirroring spec §5's "pool of task executors"
// model.
func NewInProcessBroker(ctx context.Context, concurrency int, workerName string) *InProcessBroker {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	return &InProcessBroker{
		handlers:    make(map[string]Handler),
		subs:        make(map[string][]chan Event),
		group:       group,
		groupCtx:    groupCtx,
		workerName:  workerName,
		concurrency: concurrency,
	}
}

// RegisterHandler binds a task name to its executor. Must be called before
// any SendTask for that name.
func (b *InProcessBroker) RegisterHandler(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = h
}

func (b *InProcessBroker) SendTask(ctx context.Context, name string, args ...interface{}) (string, error) {
	b.mu.Lock()
	handler, ok := b.handlers[name]
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no handler registered for task %q", name)
	}

	taskID := uuid.NewString()
	task := Task{ID: taskID, Name: name, Args: args}

	b.publish(taskID, Event{TaskID: taskID, Status: EventPending})

	b.mu.Lock()
	b.inFlight++
	b.mu.Unlock()

	b.group.Go(func() error {
		defer func() {
			b.mu.Lock()
			b.inFlight--
			b.mu.Unlock()
		}()

		b.publish(taskID, Event{TaskID: taskID, Status: EventStarted})
		err := handler(b.groupCtx, task, func(ev Event) {
			ev.TaskID = taskID
			if ev.Status == "" {
				ev.Status = EventProgress
			}
			b.publish(taskID, ev)
		})
		if err != nil {
			log.LogNoRequestID("task failed", "task_id", taskID, "task", name, "err", err)
			b.publish(taskID, Event{TaskID: taskID, Status: EventFailure, Meta: map[string]interface{}{"error": err.Error()}})
			// The dispatch loop itself must survive individual task
			// failures; the Job row (not this error) carries the
			// authoritative failure state, so this is intentionally
			// swallowed rather than returned to errgroup.
			return nil
		}
		b.publish(taskID, Event{TaskID: taskID, Status: EventSuccess, Progress: 1.0})
		return nil
	})

	return taskID, nil
}

func (b *InProcessBroker) publish(taskID string, ev Event) {
	b.mu.Lock()
	subs := append([]chan Event(nil), b.subs[taskID]...)
	b.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Best-effort: a slow/absent subscriber never blocks task
			// execution.
		}
	}
}

func (b *InProcessBroker) Subscribe(taskID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[taskID] = append(b.subs[taskID], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[taskID]
		for i, c := range subs {
			if c == ch {
				b.subs[taskID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}
	return ch, unsubscribe
}

func (b *InProcessBroker) Ping(ctx context.Context) error {
	return nil
}

func (b *InProcessBroker) SystemInfo(ctx context.Context) (SystemInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return SystemInfo{
		Workers:  []string{b.workerName},
		Capacity: b.concurrency,
		InFlight: b.inFlight,
	}, nil
}

// Wait blocks until every in-flight task handler returns. Intended for
// graceful shutdown.
func (b *InProcessBroker) Wait() error {
	return b.group.Wait()
}
