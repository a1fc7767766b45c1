package graph

import "github.com/canvion/canvion/pkg/models"

// Export serializes the live graph into a workflow document. The returned
// document shares nothing with canvas state.
func (c *Canvas) Export() *models.Workflow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &models.Workflow{
		Nodes:    models.CloneNodes(c.nodes),
		Edges:    models.CloneEdges(c.edges),
		Viewport: c.viewport,
	}
}

// Load replaces the live graph with the document's contents. Edit history
// and selection are reset; the loaded state becomes the new baseline.
func (c *Canvas) Load(wf *models.Workflow) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wf == nil {
		c.logger.Warn("load skipped: nil workflow")

		return
	}

	c.nodes = models.CloneNodes(wf.Nodes)
	c.edges = models.CloneEdges(wf.Edges)

	if wf.Viewport != (models.Viewport{}) {
		c.viewport = wf.Viewport
	} else {
		c.viewport = models.DefaultViewport()
	}

	c.selectedNodeID = ""
	c.selectedEdgeID = ""
	c.selectedNodeIDs = nil
	c.groups = nil
	c.resetHistoryLocked()
}

// Clear empties the canvas: nodes, edges, groups, selection and history.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodes = nil
	c.edges = nil
	c.groups = nil
	c.viewport = models.DefaultViewport()
	c.selectedNodeID = ""
	c.selectedEdgeID = ""
	c.selectedNodeIDs = nil
	c.triggerNodeID = ""
	c.resetHistoryLocked()
}
