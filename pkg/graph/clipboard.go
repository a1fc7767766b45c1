package graph

import (
	"github.com/canvion/canvion/pkg/models"
	"github.com/google/uuid"
)

// defaultPasteOffset shifts pasted nodes when no target position is given.
const defaultPasteOffset = 50

// clipboardPayload is the single clipboard slot: a copied induced subgraph.
type clipboardPayload struct {
	nodes []*models.Node
	edges []*models.Edge
}

// CopySelection deep-copies the selected nodes plus the edges whose both
// endpoints are selected into the clipboard, overwriting previous contents.
// A no-op when nothing is selected.
func (c *Canvas) CopySelection() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var picked []*models.Node

	if len(c.selectedNodeIDs) > 0 {
		selected := make(map[string]bool, len(c.selectedNodeIDs))
		for _, id := range c.selectedNodeIDs {
			selected[id] = true
		}

		for _, n := range c.nodes {
			if selected[n.ID] {
				picked = append(picked, n)
			}
		}
	} else if c.selectedNodeID != "" {
		if n := c.nodeLocked(c.selectedNodeID); n != nil {
			picked = append(picked, n)
		}
	}

	if len(picked) == 0 {
		return 0
	}

	ids := make(map[string]bool, len(picked))
	for _, n := range picked {
		ids[n.ID] = true
	}

	var induced []*models.Edge

	for _, e := range c.edges {
		if ids[e.Source] && ids[e.Target] {
			induced = append(induced, e)
		}
	}

	c.clipboard = &clipboardPayload{
		nodes: models.CloneNodes(picked),
		edges: models.CloneEdges(induced),
	}

	c.logger.Debug("copied selection", "nodes", len(picked), "edges", len(induced))

	return len(picked)
}

// HasClipboard reports whether the clipboard slot holds a payload.
func (c *Canvas) HasClipboard() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.clipboard != nil
}

// Paste inserts the clipboard subgraph with fresh node ids, translating the
// copied subgraph's centroid to position (or a fixed offset when position is
// nil), remapping edges through the new ids and selecting the pasted nodes.
// A no-op with an empty clipboard. Returns the pasted nodes.
func (c *Canvas) Paste(position *models.Position) []*models.Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clipboard == nil || len(c.clipboard.nodes) == 0 {
		return nil
	}

	c.saveHistoryLocked()

	offsetX := float64(defaultPasteOffset)
	offsetY := float64(defaultPasteOffset)

	if position != nil {
		var cx, cy float64

		for _, n := range c.clipboard.nodes {
			cx += n.Position.X
			cy += n.Position.Y
		}

		cx /= float64(len(c.clipboard.nodes))
		cy /= float64(len(c.clipboard.nodes))

		offsetX = position.X - cx
		offsetY = position.Y - cy
	}

	idMap := make(map[string]string, len(c.clipboard.nodes))
	pasted := make([]*models.Node, 0, len(c.clipboard.nodes))

	for _, src := range c.clipboard.nodes {
		node := models.CloneNode(src)
		idMap[src.ID] = "node-" + uuid.NewString()
		node.ID = idMap[src.ID]
		node.Position.X += offsetX
		node.Position.Y += offsetY

		c.nodes = append(c.nodes, node)
		pasted = append(pasted, node)
	}

	for _, src := range c.clipboard.edges {
		edge := models.CloneEdge(src)
		edge.Source = idMap[src.Source]
		edge.Target = idMap[src.Target]
		edge.ID = models.EdgeID(edge.Source, edge.Target)

		c.edges = append(c.edges, edge)
	}

	ids := make([]string, 0, len(pasted))
	for _, n := range pasted {
		ids = append(ids, n.ID)
	}

	c.selectedNodeIDs = ids

	if len(pasted) == 1 {
		c.selectedNodeID = pasted[0].ID
	}

	c.notifyChangedLocked()

	return models.CloneNodes(pasted)
}
