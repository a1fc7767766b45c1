package models

import "time"

// TaskType selects which status endpoint a background task is polled
// against.
type TaskType string

const (
	TaskTypeImage          TaskType = "image"
	TaskTypeVideo          TaskType = "video"
	TaskTypeVideoHD        TaskType = "video-hd"
	TaskTypeVideoHDUpscale TaskType = "video-hd-upscale"
)

// TaskStatus defines the possible states of a background generation task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsTerminal reports whether the status is absorbing: once reached, the task
// is never polled again.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task tracks one long-running generation job independently of the graph view
// that spawned it.
type Task struct {
	TaskID    string         `json:"taskId"    validate:"required"`
	Type      TaskType       `json:"type"      validate:"required"`
	NodeID    string         `json:"nodeId"`
	TabID     string         `json:"tabId"`
	Status    TaskStatus     `json:"status"`
	Progress  float64        `json:"progress"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TaskStats aggregates the task table by status.
type TaskStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
