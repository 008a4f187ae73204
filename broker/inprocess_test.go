package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendTaskRunsHandlerAndEmitsEvents(t *testing.T) {
	b := NewInProcessBroker(context.Background(), 2, "worker-1")

	done := make(chan struct{})
	b.RegisterHandler(TaskCutClip, func(ctx context.Context, task Task, publish func(Event)) error {
		publish(Event{Progress: 0.5})
		close(done)
		return nil
	})

	taskID, err := b.SendTask(context.Background(), TaskCutClip, "asset-1", 0.0, 5.0)
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	events, unsubscribe := b.Subscribe(taskID)
	defer unsubscribe()

	var statuses []EventStatus
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			statuses = append(statuses, ev.Status)
			if ev.Status == EventSuccess {
				<-done
				require.Contains(t, statuses, EventSuccess)
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for terminal event")
		}
	}
}

func TestSendTaskUnknownTaskNameErrors(t *testing.T) {
	b := NewInProcessBroker(context.Background(), 2, "worker-1")
	_, err := b.SendTask(context.Background(), "tasks.does_not_exist")
	require.Error(t, err)
}

func TestSendTaskPublishesFailureEventOnHandlerError(t *testing.T) {
	b := NewInProcessBroker(context.Background(), 1, "worker-1")
	b.RegisterHandler(TaskGenerateShorts, func(ctx context.Context, task Task, publish func(Event)) error {
		return errors.New("boom")
	})

	taskID, err := b.SendTask(context.Background(), TaskGenerateShorts)
	require.NoError(t, err)

	events, unsubscribe := b.Subscribe(taskID)
	defer unsubscribe()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Status == EventFailure {
				require.Equal(t, "boom", ev.Meta["error"])
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for failure event")
		}
	}
}

func TestSystemInfoReportsInFlightCount(t *testing.T) {
	b := NewInProcessBroker(context.Background(), 3, "worker-1")
	info, err := b.SystemInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"worker-1"}, info.Workers)
	require.Equal(t, 3, info.Capacity)
	require.Equal(t, 0, info.InFlight)
}

func TestPingAlwaysSucceeds(t *testing.T) {
	b := NewInProcessBroker(context.Background(), 1, "worker-1")
	require.NoError(t, b.Ping(context.Background()))
}
