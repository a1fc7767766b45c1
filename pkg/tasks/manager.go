// Package tasks tracks long-running generation jobs across tab switches and
// restarts. Each registered task gets its own poller goroutine that queries
// the backend until the task reaches a terminal state; completions fan out to
// per-task subscribers, the event bus and the canvas node that spawned the
// job.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/canvion/canvion/pkg/eventbus"
	"github.com/canvion/canvion/pkg/events"
	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/otelhelper"
	"github.com/canvion/canvion/pkg/status"
	"github.com/canvion/canvion/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// StorageKey is where the task registry persists between sessions.
	StorageKey = "canvas_background_tasks"

	// PollInterval is the gap between status queries for one task.
	PollInterval = 3 * time.Second

	// MaxTaskAge bounds how long a persisted task survives; anything older
	// is dropped on startup instead of resumed.
	MaxTaskAge = 24 * time.Hour
)

// Callback receives the task after every observed state change.
type Callback func(task *models.Task)

// NodeUpdater receives terminal task results for write-back into the graph.
// *graph.Canvas satisfies it.
type NodeUpdater interface {
	UpdateNodeData(nodeID string, partial map[string]any)
}

// Manager owns the background task registry.
type Manager struct {
	mu          sync.Mutex
	tasks       map[string]*models.Task
	pollers     map[string]context.CancelFunc
	subscribers map[string][]Callback

	store    storage.KV
	client   status.Client
	bus      eventbus.EventPublisher
	nodes    NodeUpdater
	tracer   trace.Tracer
	logger   *slog.Logger
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option adjusts manager construction.
type Option func(*Manager)

// WithPollInterval overrides the poll cadence, mainly for tests.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.interval = d
	}
}

// WithNodeUpdater wires terminal results back into the canvas.
func WithNodeUpdater(nodes NodeUpdater) Option {
	return func(m *Manager) {
		m.nodes = nodes
	}
}

// WithEventBus broadcasts lifecycle events beyond in-process subscribers.
func WithEventBus(bus eventbus.EventPublisher) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithTracer records one span per poll cycle.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

// NewManager creates a manager over the given store and status client.
// Call Init to load persisted tasks and resume polling.
func NewManager(store storage.KV, client status.Client, logger *slog.Logger, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		tasks:       make(map[string]*models.Task),
		pollers:     make(map[string]context.CancelFunc),
		subscribers: make(map[string][]Callback),
		store:       store,
		client:      client,
		tracer:      noop.NewTracerProvider().Tracer("tasks"),
		logger:      logger.With("module", "tasks"),
		interval:    PollInterval,
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Init loads the persisted registry, drops tasks older than MaxTaskAge and
// resumes polling for every task that is not yet terminal.
func (m *Manager) Init() error {
	data, err := m.store.Get(StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("load task registry: %w", err)
	}

	var persisted map[string]*models.Task
	if err := json.Unmarshal(data, &persisted); err != nil {
		m.logger.Warn("task registry is corrupt, starting empty", "error", err)

		return nil
	}

	cutoff := time.Now().Add(-MaxTaskAge)
	resumed := 0

	m.mu.Lock()

	for id, task := range persisted {
		if task.CreatedAt.Before(cutoff) {
			continue
		}

		m.tasks[id] = task

		if !task.Status.IsTerminal() {
			m.startPollerLocked(task)

			resumed++
		}
	}

	m.persistLocked()
	m.mu.Unlock()

	m.logger.Info("task registry loaded", "tasks", len(m.tasks), "resumed", resumed)

	return nil
}

// RegisterTask adds a task to the registry and starts polling it.
// Registering an already known task ID is a no-op, so retried API calls do
// not spawn duplicate pollers.
func (m *Manager) RegisterTask(taskID string, taskType models.TaskType, nodeID, tabID string, metadata map[string]any) *models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.tasks[taskID]; ok {
		snapshot := *existing

		return &snapshot
	}

	now := time.Now().UTC()
	task := &models.Task{
		TaskID:    taskID,
		Type:      taskType,
		NodeID:    nodeID,
		TabID:     tabID,
		Status:    models.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}

	m.tasks[taskID] = task
	m.persistLocked()
	m.startPollerLocked(task)

	m.logger.Info("task registered", "task_id", taskID, "type", taskType, "node_id", nodeID)

	snapshot := *task

	return &snapshot
}

// SubscribeTask registers a callback for one task's state changes. A task
// already in a terminal state fires the callback immediately.
func (m *Manager) SubscribeTask(taskID string, callback Callback) {
	m.mu.Lock()

	task, ok := m.tasks[taskID]
	if ok && task.Status.IsTerminal() {
		snapshot := *task
		m.mu.Unlock()
		callback(&snapshot)

		return
	}

	m.subscribers[taskID] = append(m.subscribers[taskID], callback)
	m.mu.Unlock()
}

// Task returns a snapshot of the tracked task, if any.
func (m *Manager) Task(taskID string) (*models.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, false
	}

	snapshot := *task

	return &snapshot, true
}

// Tasks returns a snapshot of every tracked task.
func (m *Manager) Tasks() []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Task, 0, len(m.tasks))

	for _, task := range m.tasks {
		snapshot := *task
		out = append(out, &snapshot)
	}

	return out
}

// TasksByNode returns the tasks spawned by one node.
func (m *Manager) TasksByNode(nodeID string) []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Task

	for _, task := range m.tasks {
		if task.NodeID == nodeID {
			snapshot := *task
			out = append(out, &snapshot)
		}
	}

	return out
}

// TasksByTab returns the tasks spawned from one tab.
func (m *Manager) TasksByTab(tabID string) []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Task

	for _, task := range m.tasks {
		if task.TabID == tabID {
			snapshot := *task
			out = append(out, &snapshot)
		}
	}

	return out
}

// Stats aggregates the registry by status.
func (m *Manager) Stats() models.TaskStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats models.TaskStats

	for _, task := range m.tasks {
		switch task.Status {
		case models.TaskStatusPending:
			stats.Pending++
		case models.TaskStatusProcessing:
			stats.Processing++
		case models.TaskStatusCompleted:
			stats.Completed++
		case models.TaskStatusFailed:
			stats.Failed++
		}
	}

	stats.Total = len(m.tasks)

	return stats
}

// RemoveCompletedTask drops one terminal task from the registry. Tasks still
// running are kept.
func (m *Manager) RemoveCompletedTask(taskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok || !task.Status.IsTerminal() {
		return false
	}

	delete(m.tasks, taskID)
	delete(m.subscribers, taskID)
	m.persistLocked()

	return true
}

// ClearCompletedTasks drops every terminal task and reports how many were
// removed.
func (m *Manager) ClearCompletedTasks() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0

	for id, task := range m.tasks {
		if task.Status.IsTerminal() {
			delete(m.tasks, id)
			delete(m.subscribers, id)

			removed++
		}
	}

	if removed > 0 {
		m.persistLocked()
	}

	return removed
}

// Shutdown stops all pollers and waits for them to exit. The registry stays
// persisted for the next Init.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

// startPollerLocked launches the poll loop for a task. Idempotent per task
// ID.
func (m *Manager) startPollerLocked(task *models.Task) {
	if _, running := m.pollers[task.TaskID]; running {
		return
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.pollers[task.TaskID] = cancel

	m.wg.Add(1)

	go m.poll(ctx, task.TaskID, string(task.Type))
}

// poll queries the backend immediately and then every interval until the
// task finishes or ctx is cancelled. Ticker-driven, so a slow backend call
// never stacks overlapping requests.
func (m *Manager) poll(ctx context.Context, taskID, taskType string) {
	defer m.wg.Done()

	if done := m.pollOnce(ctx, taskID, taskType); done {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := m.pollOnce(ctx, taskID, taskType); done {
				return
			}
		}
	}
}

func (m *Manager) pollOnce(ctx context.Context, taskID, taskType string) bool {
	ctx, span := otelhelper.StartSpan(ctx, m.tracer, "task.poll",
		attribute.String(otelhelper.TaskIDKey, taskID),
		attribute.String(otelhelper.TaskTypeKey, taskType),
	)
	defer span.End()

	result, err := m.client.TaskStatus(ctx, taskType, taskID)
	if err != nil {
		if errors.Is(err, status.ErrTaskNotFound) {
			otelhelper.SetError(span, err)
			m.finishTask(taskID, models.TaskStatusFailed, nil, "task not found on backend")

			return true
		}

		// Transient backend trouble; keep the poller alive.
		otelhelper.SetError(span, err)
		m.logger.Warn("task poll failed", "task_id", taskID, "error", err)

		return false
	}

	switch classify(result) {
	case models.TaskStatusCompleted:
		span.SetAttributes(attribute.String(otelhelper.TaskStatusKey, string(models.TaskStatusCompleted)))
		m.finishTask(taskID, models.TaskStatusCompleted, resultPayload(result), "")

		return true
	case models.TaskStatusFailed:
		span.SetAttributes(attribute.String(otelhelper.TaskStatusKey, string(models.TaskStatusFailed)))
		m.finishTask(taskID, models.TaskStatusFailed, nil, failureMessage(result))

		return true
	default:
		m.updateProgress(taskID, result.Progress)

		return false
	}
}

// classify maps a backend result onto a task status. Status strings are
// matched case-insensitively; a present output URL counts as completion even
// when the status field says otherwise.
func classify(result *status.Result) models.TaskStatus {
	switch strings.ToLower(result.Status) {
	case "completed", "success", "succeeded":
		return models.TaskStatusCompleted
	case "failed", "error", "failure":
		return models.TaskStatusFailed
	}

	if result.URL != "" || result.VideoURL != "" {
		return models.TaskStatusCompleted
	}

	return models.TaskStatusProcessing
}

func resultPayload(result *status.Result) map[string]any {
	payload := map[string]any{}

	if result.URL != "" {
		payload["url"] = result.URL
	}

	if result.VideoURL != "" {
		payload["videoUrl"] = result.VideoURL
	}

	return payload
}

func failureMessage(result *status.Result) string {
	if result.Error != "" {
		return result.Error
	}

	if result.FailReason != "" {
		return result.FailReason
	}

	return "generation failed"
}

// updateProgress records a non-terminal observation and notifies listeners.
// A nil progress keeps the last reported value.
func (m *Manager) updateProgress(taskID string, progress *float64) {
	m.mu.Lock()

	task, ok := m.tasks[taskID]
	if !ok || task.Status.IsTerminal() {
		m.mu.Unlock()

		return
	}

	task.Status = models.TaskStatusProcessing

	if progress != nil {
		task.Progress = *progress
	}
	task.UpdatedAt = time.Now().UTC()
	m.persistLocked()

	callbacks := append([]Callback(nil), m.subscribers[taskID]...)
	snapshot := *task
	m.mu.Unlock()

	for _, callback := range callbacks {
		callback(&snapshot)
	}

	m.publish(events.TaskProgress{
		BaseEvent: m.baseEvent(events.TaskProgressEvent, taskID),
		Task:      &snapshot,
	})
}

// finishTask moves a task into a terminal state exactly once, stops its
// poller, notifies subscribers, publishes the terminal event and writes the
// result back onto the originating node.
func (m *Manager) finishTask(taskID string, final models.TaskStatus, result map[string]any, errMsg string) {
	m.mu.Lock()

	task, ok := m.tasks[taskID]
	if !ok || task.Status.IsTerminal() {
		m.mu.Unlock()

		return
	}

	task.Status = final
	task.UpdatedAt = time.Now().UTC()

	if final == models.TaskStatusCompleted {
		task.Progress = 1
		task.Result = result
	} else {
		task.Error = errMsg
	}

	if cancel, running := m.pollers[taskID]; running {
		cancel()
		delete(m.pollers, taskID)
	}

	m.persistLocked()

	callbacks := m.subscribers[taskID]
	delete(m.subscribers, taskID)

	snapshot := *task
	m.mu.Unlock()

	m.logger.Info("task finished", "task_id", taskID, "status", final, "error", errMsg)

	for _, callback := range callbacks {
		callback(&snapshot)
	}

	if final == models.TaskStatusCompleted {
		m.publish(events.TaskCompleted{
			BaseEvent: m.baseEvent(events.TaskCompletedEvent, taskID),
			Task:      &snapshot,
			Result:    result,
		})
	} else {
		m.publish(events.TaskFailed{
			BaseEvent: m.baseEvent(events.TaskFailedEvent, taskID),
			Task:      &snapshot,
			Error:     errMsg,
		})
	}

	m.updateNode(&snapshot)
}

// updateNode writes the terminal outcome onto the node that spawned the
// task.
func (m *Manager) updateNode(task *models.Task) {
	if m.nodes == nil || task.NodeID == "" {
		return
	}

	partial := map[string]any{
		models.DataKeyStatus: string(nodeStatusFor(task.Status)),
	}

	if task.Status == models.TaskStatusCompleted {
		partial[models.DataKeyOutput] = outputFor(task)
	} else if task.Error != "" {
		partial["error"] = task.Error
	}

	m.nodes.UpdateNodeData(task.NodeID, partial)
}

func nodeStatusFor(s models.TaskStatus) models.NodeStatus {
	if s == models.TaskStatusCompleted {
		return models.NodeStatusCompleted
	}

	return models.NodeStatusFailed
}

// outputFor shapes the node output payload so downstream propagation picks
// it up in the same form manual edits produce.
func outputFor(task *models.Task) map[string]any {
	switch task.Type {
	case models.TaskTypeImage:
		if url, ok := task.Result["url"]; ok {
			return map[string]any{"type": "image", "urls": []any{url}}
		}
	case models.TaskTypeVideo, models.TaskTypeVideoHD, models.TaskTypeVideoHDUpscale:
		url := task.Result["videoUrl"]
		if url == nil {
			url = task.Result["url"]
		}

		if url != nil {
			return map[string]any{"type": "video", "url": url}
		}
	}

	return task.Result
}

func (m *Manager) baseEvent(eventType events.EventType, taskID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        taskID + "-" + string(eventType),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TaskID:    taskID,
	}
}

func (m *Manager) publish(event events.Event) {
	if m.bus == nil {
		return
	}

	if err := m.bus.Publish(m.ctx, event); err != nil {
		m.logger.Warn("event publish failed", "event", event.GetType(), "error", err)
	}
}

// persistLocked saves the registry. Persistence failures are logged, not
// fatal: the in-memory registry stays authoritative for the session.
func (m *Manager) persistLocked() {
	data, err := json.Marshal(m.tasks)
	if err != nil {
		m.logger.Error("task registry marshal failed", "error", err)

		return
	}

	if err := m.store.Set(StorageKey, data); err != nil {
		m.logger.Warn("task registry persist failed", "error", err)
	}
}
