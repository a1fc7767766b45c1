// Package graph implements the in-memory canvas graph: nodes, edges, groups,
// selection, snapshot-based undo/redo and clipboard. All operations are
// total over possibly-absent ids; a bad id is a logged no-op, never an error.
package graph

import (
	"log/slog"
	"sync"

	"github.com/canvion/canvion/pkg/models"
	"github.com/google/uuid"
)

const maxHistoryLength = 50

// Canvas owns one live workflow graph. It is safe for concurrent use: UI
// commands and background-task completions may touch it from different
// goroutines.
type Canvas struct {
	mu sync.RWMutex

	nodes  []*models.Node
	edges  []*models.Edge
	groups []*models.Group

	viewport models.Viewport

	selectedNodeID  string
	selectedEdgeID  string
	selectedNodeIDs []string

	// triggerNodeID is set when the next AddNode is being created as the
	// downstream target of an existing node; the connecting edge is created
	// atomically with the node.
	triggerNodeID string

	history         []snapshot
	historyIndex    int
	applyingHistory bool

	clipboard *clipboardPayload

	onChange func()

	logger *slog.Logger
}

// NewCanvas returns an empty canvas.
func NewCanvas(logger *slog.Logger) *Canvas {
	if logger == nil {
		logger = slog.Default()
	}

	return &Canvas{
		viewport:     models.DefaultViewport(),
		historyIndex: -1,
		logger:       logger.With("component", "canvas"),
	}
}

// SetChangeListener registers a callback fired after every mutating
// operation. The tab manager uses it to track per-tab dirty state.
func (c *Canvas) SetChangeListener(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onChange = fn
}

func (c *Canvas) notifyChangedLocked() {
	if c.onChange != nil {
		c.onChange()
	}
}

// NodeSpec describes a node to be added. Zero-value fields get defaults.
type NodeSpec struct {
	ID         string
	Type       models.NodeType
	Title      string
	Position   models.Position
	ZIndex     int
	Draggable  *bool
	Selectable *bool
	Data       map[string]any
}

// AddNode appends a node to the canvas. Unless skipHistory is set, the
// pre-mutation state is recorded for undo. When a trigger-node context is
// active the connecting edge is created in the same operation and the new
// node is selected.
func (c *Canvas) AddNode(spec NodeSpec, skipHistory bool) *models.Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !skipHistory {
		c.saveHistoryLocked()
	}

	node := &models.Node{
		ID:         spec.ID,
		Type:       spec.Type,
		Position:   spec.Position,
		ZIndex:     spec.ZIndex,
		Draggable:  true,
		Selectable: true,
		Data:       models.CloneMap(spec.Data),
	}

	if node.ID == "" {
		node.ID = "node-" + uuid.NewString()
	}

	if spec.Draggable != nil {
		node.Draggable = *spec.Draggable
	}

	if spec.Selectable != nil {
		node.Selectable = *spec.Selectable
	}

	if node.Data == nil {
		node.Data = make(map[string]any)
	}

	if _, ok := node.Data[models.DataKeyTitle]; !ok {
		title := spec.Title
		if title == "" {
			title = models.DefaultTitle(spec.Type)
		}

		node.Data[models.DataKeyTitle] = title
	}

	if _, ok := node.Data[models.DataKeyStatus]; !ok {
		node.Data[models.DataKeyStatus] = string(models.NodeStatusIdle)
	}

	if _, ok := node.Data[models.DataKeyEstimatedCost]; !ok {
		node.Data[models.DataKeyEstimatedCost] = float64(0)
	}

	c.nodes = append(c.nodes, node)

	if c.triggerNodeID != "" {
		c.addEdgeLocked(EdgeSpec{Source: c.triggerNodeID, Target: node.ID}, false, true)
		c.triggerNodeID = ""
	}

	c.selectNodeLocked(node.ID)
	c.notifyChangedLocked()

	return models.CloneNode(node)
}

// SetTriggerNode arms the trigger-node context consumed by the next AddNode.
func (c *Canvas) SetTriggerNode(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerNodeID = nodeID
}

// ClearTriggerNode disarms the trigger-node context.
func (c *Canvas) ClearTriggerNode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerNodeID = ""
}

// UpdateNodeData shallow-merges partial into the node's data bag. No-op if
// the node is absent. History granularity is the caller's decision.
func (c *Canvas) UpdateNodeData(nodeID string, partial map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updateNodeDataLocked(nodeID, partial)
}

func (c *Canvas) updateNodeDataLocked(nodeID string, partial map[string]any) {
	node := c.nodeLocked(nodeID)
	if node == nil {
		return
	}

	if node.Data == nil {
		node.Data = make(map[string]any)
	}

	for k, v := range models.CloneMap(partial) {
		if v == nil {
			delete(node.Data, k)

			continue
		}

		node.Data[k] = v
	}

	c.notifyChangedLocked()
}

// UpdateNodePosition moves a node. No-op if absent.
func (c *Canvas) UpdateNodePosition(nodeID string, pos models.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.nodeLocked(nodeID)
	if node == nil {
		return
	}

	node.Position = pos
	c.notifyChangedLocked()
}

// RemoveNode deletes a node, cascading to every incident edge and clearing
// any selection that referenced it.
func (c *Canvas) RemoveNode(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nodeLocked(nodeID) == nil {
		return
	}

	c.saveHistoryLocked()

	kept := c.edges[:0]

	for _, e := range c.edges {
		if e.Source != nodeID && e.Target != nodeID {
			kept = append(kept, e)
		}
	}

	c.edges = kept

	for i, n := range c.nodes {
		if n.ID == nodeID {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)

			break
		}
	}

	if c.selectedNodeID == nodeID {
		c.selectedNodeID = ""
	}

	ids := c.selectedNodeIDs[:0]

	for _, id := range c.selectedNodeIDs {
		if id != nodeID {
			ids = append(ids, id)
		}
	}

	c.selectedNodeIDs = ids
	c.notifyChangedLocked()
}

// Node returns a deep copy of the node, or nil when absent.
func (c *Canvas) Node(nodeID string) *models.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return models.CloneNode(c.nodeLocked(nodeID))
}

// Nodes returns a deep copy of all nodes.
func (c *Canvas) Nodes() []*models.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return models.CloneNodes(c.nodes)
}

// Edges returns a deep copy of all edges.
func (c *Canvas) Edges() []*models.Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return models.CloneEdges(c.edges)
}

// NodeCount returns the number of nodes on the canvas.
func (c *Canvas) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.nodes)
}

// IsEmpty reports whether the canvas has no nodes.
func (c *Canvas) IsEmpty() bool {
	return c.NodeCount() == 0
}

// UpstreamNodes returns deep copies of the nodes feeding into nodeID.
func (c *Canvas) UpstreamNodes(nodeID string) []*models.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*models.Node

	for _, e := range c.edges {
		if e.Target == nodeID {
			if n := c.nodeLocked(e.Source); n != nil {
				out = append(out, models.CloneNode(n))
			}
		}
	}

	return out
}

// DownstreamNodes returns deep copies of the nodes fed by nodeID.
func (c *Canvas) DownstreamNodes(nodeID string) []*models.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*models.Node

	for _, e := range c.edges {
		if e.Source == nodeID {
			if n := c.nodeLocked(e.Target); n != nil {
				out = append(out, models.CloneNode(n))
			}
		}
	}

	return out
}

// SelectNode marks a single node as selected and clears any edge selection.
func (c *Canvas) SelectNode(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectNodeLocked(nodeID)
}

func (c *Canvas) selectNodeLocked(nodeID string) {
	c.selectedNodeID = nodeID
	c.selectedEdgeID = ""
}

// ClearSelection drops node and edge selection.
func (c *Canvas) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectedNodeID = ""
	c.selectedEdgeID = ""
	c.selectedNodeIDs = nil
}

// SetSelectedNodeIDs replaces the multi-selection list.
func (c *Canvas) SetSelectedNodeIDs(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectedNodeIDs = append([]string(nil), ids...)
}

// SelectAll selects every node on the canvas.
func (c *Canvas) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		ids = append(ids, n.ID)
	}

	c.selectedNodeIDs = ids

	if len(c.nodes) > 0 {
		c.selectedNodeID = c.nodes[0].ID
	}
}

// SelectedNodeID returns the single-selection node id, or "".
func (c *Canvas) SelectedNodeID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.selectedNodeID
}

// SelectedNodeIDs returns the multi-selection list.
func (c *Canvas) SelectedNodeIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.selectedNodeIDs...)
}

// SetViewport stores the current visible region.
func (c *Canvas) SetViewport(v models.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.viewport = v
}

// Viewport returns the current visible region.
func (c *Canvas) Viewport() models.Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.viewport
}

func (c *Canvas) nodeLocked(nodeID string) *models.Node {
	for _, n := range c.nodes {
		if n.ID == nodeID {
			return n
		}
	}

	return nil
}
