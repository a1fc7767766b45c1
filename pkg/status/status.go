// Package status queries the generation backend for background task state.
// The task manager polls through this interface; tests and local development
// plug in scripted implementations.
package status

import (
	"context"
	"errors"
)

// ErrTaskNotFound indicates the backend has no record of the task. Pollers
// treat this as a permanent failure rather than a transient error.
var ErrTaskNotFound = errors.New("task not found")

// Result is the backend's view of one task. Field names follow the backend's
// snake_case envelope. Progress is a pointer: backends omit the field on some
// polls and an absent value must not overwrite the last observation.
type Result struct {
	Status     string   `json:"status"`
	Progress   *float64 `json:"progress,omitempty"`
	URL        string   `json:"url,omitempty"`
	VideoURL   string   `json:"video_url,omitempty"`
	Error      string   `json:"error,omitempty"`
	FailReason string   `json:"fail_reason,omitempty"`
}

// Client fetches the current state of a task. taskType selects the backend
// endpoint.
type Client interface {
	TaskStatus(ctx context.Context, taskType, taskID string) (*Result, error)
}
