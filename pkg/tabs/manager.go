// Package tabs multiplexes several open workflows over a single canvas.
// Only the active tab lives on the canvas; the others keep a serialized
// snapshot that is swapped back in when the user switches to them.
package tabs

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/canvion/canvion/pkg/graph"
	"github.com/canvion/canvion/pkg/models"
	"github.com/google/uuid"
)

// MaxTabs caps how many workflows may be open at once.
const MaxTabs = 10

// Tab is one open workflow. Nodes, Edges and Viewport hold the serialized
// state of inactive tabs; for the active tab the canvas is authoritative and
// these fields are refreshed on switch or close.
type Tab struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	WorkflowID string          `json:"workflowId,omitempty"`
	Nodes      []*models.Node  `json:"nodes"`
	Edges      []*models.Edge  `json:"edges"`
	Viewport   models.Viewport `json:"viewport"`
	HasChanges bool            `json:"hasChanges"`
}

// Manager owns the tab list and the active index. All mutation goes through
// it so the canvas and the tab snapshots never drift apart.
type Manager struct {
	mu          sync.Mutex
	canvas      *graph.Canvas
	tabs        []*Tab
	activeIndex int

	// dirty is set by the canvas change listener, which runs under the
	// canvas lock. It is folded into the active tab's HasChanges the next
	// time the manager's own lock is held, so the two locks are never
	// nested in opposite orders.
	dirty atomic.Bool

	logger *slog.Logger
}

// NewManager starts with one empty untitled tab bound to canvas. The canvas
// change listener is claimed to keep the active tab's dirty bit current.
func NewManager(canvas *graph.Canvas, logger *slog.Logger) *Manager {
	m := &Manager{
		canvas:      canvas,
		activeIndex: 0,
		logger:      logger.With("module", "tabs"),
	}

	m.tabs = []*Tab{m.newTab("Untitled")}

	canvas.SetChangeListener(func() {
		m.dirty.Store(true)
	})

	return m
}

// flushDirtyLocked transfers a pending change notification onto the active
// tab.
func (m *Manager) flushDirtyLocked() {
	if len(m.tabs) == 0 {
		m.dirty.Store(false)

		return
	}

	if m.dirty.Swap(false) {
		m.tabs[m.activeIndex].HasChanges = true
	}
}

func (m *Manager) newTab(name string) *Tab {
	return &Tab{
		ID:       "tab-" + uuid.NewString(),
		Name:     name,
		Nodes:    []*models.Node{},
		Edges:    []*models.Edge{},
		Viewport: models.DefaultViewport(),
	}
}

// CreateTab opens a new empty tab and makes it active. Returns nil when the
// tab cap has been reached.
func (m *Manager) CreateTab(name string) *Tab {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tabs) >= MaxTabs {
		m.logger.Warn("tab limit reached", "max", MaxTabs)
		return nil
	}

	if name == "" {
		name = fmt.Sprintf("Untitled %d", len(m.tabs)+1)
	}

	m.saveActiveLocked()

	tab := m.newTab(name)
	m.tabs = append(m.tabs, tab)
	m.activeIndex = len(m.tabs) - 1
	m.loadActiveLocked()

	m.logger.Info("tab created", "tab_id", tab.ID, "name", name)

	return tab
}

// SwitchToTab serializes the canvas into the departing tab and loads the
// requested tab's state. Switching to the already active tab is a no-op.
func (m *Manager) SwitchToTab(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return fmt.Errorf("tab not found: %s", id)
	}

	if idx == m.activeIndex {
		return nil
	}

	m.saveActiveLocked()
	m.activeIndex = idx
	m.loadActiveLocked()

	return nil
}

// CloseTab removes a tab. Closing the last remaining tab clears the canvas
// and leaves the manager with no open tabs, so the host can drop back to its
// home view. When the active tab closes, the tab at the same index becomes
// active, falling back to the previous one at the end of the list.
func (m *Manager) CloseTab(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return fmt.Errorf("tab not found: %s", id)
	}

	if len(m.tabs) == 1 {
		m.canvas.Clear()
		m.dirty.Store(false)
		m.tabs = nil
		m.activeIndex = -1
		return nil
	}

	wasActive := idx == m.activeIndex

	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)

	switch {
	case wasActive:
		if idx >= len(m.tabs) {
			idx = len(m.tabs) - 1
		}
		m.activeIndex = idx
		m.loadActiveLocked()
	case idx < m.activeIndex:
		m.activeIndex--
	}

	return nil
}

// RenameTab sets a tab's display name.
func (m *Manager) RenameTab(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return fmt.Errorf("tab not found: %s", id)
	}

	m.tabs[idx].Name = name

	return nil
}

// ActiveTab returns the active tab with its snapshot refreshed from the
// canvas, or nil when no tabs are open.
func (m *Manager) ActiveTab() *Tab {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tabs) == 0 {
		return nil
	}

	m.saveActiveLocked()

	return m.tabs[m.activeIndex]
}

// Tabs returns the tab list in order. The active tab's snapshot is refreshed
// first.
func (m *Manager) Tabs() []*Tab {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveActiveLocked()

	out := make([]*Tab, len(m.tabs))
	copy(out, m.tabs)

	return out
}

// MarkCurrentTabChanged sets the active tab's dirty bit. A no-op when no
// tabs are open.
func (m *Manager) MarkCurrentTabChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tabs) == 0 {
		return
	}

	m.tabs[m.activeIndex].HasChanges = true
}

// MarkCurrentTabSaved clears the dirty bit and records the workflow the tab
// was saved as. A no-op when no tabs are open.
func (m *Manager) MarkCurrentTabSaved(workflowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirty.Store(false)

	if len(m.tabs) == 0 {
		return
	}

	tab := m.tabs[m.activeIndex]
	tab.HasChanges = false
	tab.WorkflowID = workflowID
}

// OpenWorkflow loads a saved workflow into a new tab (or the current tab if
// it is empty and untouched) and makes it active.
func (m *Manager) OpenWorkflow(wf *models.Workflow) (*Tab, error) {
	if wf == nil {
		return nil, fmt.Errorf("workflow is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.flushDirtyLocked()

	var active *Tab
	if len(m.tabs) > 0 {
		active = m.tabs[m.activeIndex]
	}

	reuse := active != nil && !active.HasChanges && m.canvas.IsEmpty() && active.WorkflowID == ""
	if !reuse {
		if len(m.tabs) >= MaxTabs {
			return nil, fmt.Errorf("tab limit reached: %d", MaxTabs)
		}

		m.saveActiveLocked()
		active = m.newTab(wf.Name)
		m.tabs = append(m.tabs, active)
		m.activeIndex = len(m.tabs) - 1
	}

	active.Name = wf.Name
	active.WorkflowID = wf.ID

	m.canvas.Load(wf)
	m.saveActiveLocked()
	active.HasChanges = false

	return active, nil
}

func (m *Manager) indexOfLocked(id string) int {
	for i, t := range m.tabs {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// saveActiveLocked snapshots the canvas into the active tab. A no-op when no
// tabs are open.
func (m *Manager) saveActiveLocked() {
	m.flushDirtyLocked()

	if len(m.tabs) == 0 {
		return
	}

	tab := m.tabs[m.activeIndex]
	wf := m.canvas.Export()
	tab.Nodes = wf.Nodes
	tab.Edges = wf.Edges
	tab.Viewport = wf.Viewport
}

// loadActiveLocked pushes the active tab's snapshot onto the canvas.
func (m *Manager) loadActiveLocked() {
	tab := m.tabs[m.activeIndex]

	m.canvas.Load(&models.Workflow{
		ID:       tab.WorkflowID,
		Name:     tab.Name,
		Nodes:    tab.Nodes,
		Edges:    tab.Edges,
		Viewport: tab.Viewport,
	})

	m.dirty.Store(false)
}
