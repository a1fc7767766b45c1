package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/canvion/canvion/pkg/channels/gochannel"
	"github.com/canvion/canvion/pkg/eventbus"
	"github.com/canvion/canvion/pkg/events"
	"github.com/canvion/canvion/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan events.Event, 1)

	err := bus.Subscribe(t.Context(), func(_ context.Context, event events.Event) error {
		received <- event
		return nil
	})
	require.NoError(t, err)

	task := &models.Task{TaskID: "task-1", Type: models.TaskTypeImage, NodeID: "node-1"}

	err = bus.Publish(t.Context(), events.TaskCompleted{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.TaskCompletedEvent,
			Timestamp: time.Now().UTC(),
			TaskID:    task.TaskID,
		},
		Task:   task,
		Result: map[string]any{"url": "https://cdn.example.com/i.png"},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		completed, ok := event.(*events.TaskCompleted)
		require.True(t, ok)
		assert.Equal(t, "task-1", completed.TaskID)
		assert.Equal(t, "node-1", completed.Task.NodeID)
		assert.Equal(t, "https://cdn.example.com/i.png", completed.Result["url"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestSubscribeDecodesEachEventType(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan events.Event, 3)

	err := bus.Subscribe(t.Context(), func(_ context.Context, event events.Event) error {
		received <- event
		return nil
	})
	require.NoError(t, err)

	task := &models.Task{TaskID: "task-2", Type: models.TaskTypeVideo}

	require.NoError(t, bus.Publish(t.Context(), events.TaskProgress{
		BaseEvent: events.BaseEvent{Type: events.TaskProgressEvent, TaskID: task.TaskID},
		Task:      task,
	}))
	require.NoError(t, bus.Publish(t.Context(), events.TaskFailed{
		BaseEvent: events.BaseEvent{Type: events.TaskFailedEvent, TaskID: task.TaskID},
		Task:      task,
		Error:     "render failed",
	}))

	types := make(map[events.EventType]bool)

	for range 2 {
		select {
		case event := <-received:
			types[event.GetType()] = true
		case <-time.After(2 * time.Second):
			t.Fatal("missing event")
		}
	}

	assert.True(t, types[events.TaskProgressEvent])
	assert.True(t, types[events.TaskFailedEvent])
}
