// Package events defines event types and structures for background task
// lifecycle notifications.
package events

import (
	"time"

	"github.com/canvion/canvion/pkg/models"
)

type EventType string

// TaskTopic carries all background task lifecycle events.
const TaskTopic = "canvion.tasks"

const EventTypeMetadataKey = "event_type"

// Event names match what canvas hosts already listen for.
const (
	TaskProgressEvent  EventType = "background-task-progress"
	TaskCompletedEvent EventType = "background-task-complete"
	TaskFailedEvent    EventType = "background-task-failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	TaskID    string    `json:"task_id"`
}

// TaskProgress is emitted on every poll that observes a still-running task.
type TaskProgress struct {
	BaseEvent

	Task *models.Task `json:"task"`
}

func (e TaskProgress) GetType() EventType {
	return TaskProgressEvent
}

// TaskCompleted is emitted exactly once when a task reaches a terminal
// success state.
type TaskCompleted struct {
	BaseEvent

	Task   *models.Task   `json:"task"`
	Result map[string]any `json:"result,omitempty"`
}

func (e TaskCompleted) GetType() EventType {
	return TaskCompletedEvent
}

// TaskFailed is emitted exactly once when a task reaches a terminal failure
// state.
type TaskFailed struct {
	BaseEvent

	Task  *models.Task `json:"task"`
	Error string       `json:"error"`
}

func (e TaskFailed) GetType() EventType {
	return TaskFailedEvent
}

// Event is implemented by every task lifecycle event.
type Event interface {
	GetType() EventType
}
