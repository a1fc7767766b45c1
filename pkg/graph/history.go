package graph

import "github.com/canvion/canvion/pkg/models"

// snapshot is a deep copy of the graph at a point in time. history[i] is the
// state immediately before the i-th recorded edit.
type snapshot struct {
	nodes []*models.Node
	edges []*models.Edge
}

func (c *Canvas) snapshotLocked() snapshot {
	return snapshot{
		nodes: models.CloneNodes(c.nodes),
		edges: models.CloneEdges(c.edges),
	}
}

func (c *Canvas) restoreLocked(s snapshot) {
	c.nodes = models.CloneNodes(s.nodes)
	c.edges = models.CloneEdges(s.edges)
}

// SaveHistory records the current state as the pre-state of the next edit.
// Callers invoke it before mutating. Recording is suppressed while a
// snapshot is being applied so undo/redo never re-enters the stack.
func (c *Canvas) SaveHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.saveHistoryLocked()
}

func (c *Canvas) saveHistoryLocked() {
	if c.applyingHistory {
		return
	}

	// A new edit abandons any redo branch.
	if c.historyIndex < len(c.history)-1 {
		c.history = c.history[:c.historyIndex+1]
	}

	c.history = append(c.history, c.snapshotLocked())

	if len(c.history) > maxHistoryLength {
		c.history = c.history[1:]
	}

	c.historyIndex = len(c.history) - 1
}

// CanUndo reports whether an undo step is available.
func (c *Canvas) CanUndo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.historyIndex >= 0
}

// CanRedo reports whether a redo step is available.
func (c *Canvas) CanRedo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.historyIndex < len(c.history)-2
}

// Undo restores the state immediately before the most recent edit. At the
// history tip the live state is first captured so Redo can return to it.
func (c *Canvas) Undo() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.historyIndex < 0 {
		return
	}

	c.applyingHistory = true

	if c.historyIndex == len(c.history)-1 {
		c.history = append(c.history, c.snapshotLocked())
	}

	c.restoreLocked(c.history[c.historyIndex])
	c.historyIndex--

	c.applyingHistory = false
	c.notifyChangedLocked()
}

// Redo re-applies the most recently undone edit. A no-op at the boundary or
// after a new edit has discarded the redo branch.
func (c *Canvas) Redo() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.historyIndex >= len(c.history)-2 {
		return
	}

	c.applyingHistory = true

	c.historyIndex++
	c.restoreLocked(c.history[c.historyIndex+1])

	c.applyingHistory = false
	c.notifyChangedLocked()
}

func (c *Canvas) resetHistoryLocked() {
	c.history = nil
	c.historyIndex = -1
	c.applyingHistory = false
}
