package graph

import (
	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/rules"
)

// EdgeSpec describes an edge to be added. Handles default to output/input.
type EdgeSpec struct {
	ID           string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// AddEdge connects two nodes after checking the connection rules. Rejections
// (unknown endpoints, incompatible types) and duplicate (source, target)
// pairs are no-ops; on success the source's output is propagated into the
// target. Returns the edge, the existing edge for duplicates, or nil when
// rejected.
func (c *Canvas) AddEdge(spec EdgeSpec) *models.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.addEdgeLocked(spec, true, false)
}

// ForceAddEdge connects two nodes without consulting the connection rules.
// Trusted internal callers (trigger-node auto-connect, paste, workflow load)
// use it; duplicates and unknown endpoints are still rejected.
func (c *Canvas) ForceAddEdge(spec EdgeSpec) *models.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.addEdgeLocked(spec, false, false)
}

func (c *Canvas) addEdgeLocked(spec EdgeSpec, enforceRules, skipHistory bool) *models.Edge {
	source := c.nodeLocked(spec.Source)
	target := c.nodeLocked(spec.Target)

	if source == nil || target == nil {
		c.logger.Warn("edge rejected: unknown endpoint", "source", spec.Source, "target", spec.Target)

		return nil
	}

	if enforceRules && !rules.CanConnect(source.Type, target.Type) {
		c.logger.Warn("edge rejected: incompatible node types",
			"source_type", source.Type, "target_type", target.Type)

		return nil
	}

	for _, e := range c.edges {
		if e.Source == spec.Source && e.Target == spec.Target {
			return models.CloneEdge(e)
		}
	}

	if !skipHistory {
		c.saveHistoryLocked()
	}

	edge := &models.Edge{
		ID:           spec.ID,
		Source:       spec.Source,
		Target:       spec.Target,
		SourceHandle: spec.SourceHandle,
		TargetHandle: spec.TargetHandle,
	}

	if edge.ID == "" {
		edge.ID = models.EdgeID(edge.Source, edge.Target)
	}

	if edge.SourceHandle == "" {
		edge.SourceHandle = models.HandleOutput
	}

	if edge.TargetHandle == "" {
		edge.TargetHandle = models.HandleInput
	}

	c.edges = append(c.edges, edge)
	c.propagateDataLocked(edge.Source, edge.Target)
	c.notifyChangedLocked()

	return models.CloneEdge(edge)
}

// RemoveEdge deletes an edge by id. Absent ids are a no-op.
func (c *Canvas) RemoveEdge(edgeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.edges {
		if e.ID == edgeID {
			c.saveHistoryLocked()
			c.edges = append(c.edges[:i], c.edges[i+1:]...)

			if c.selectedEdgeID == edgeID {
				c.selectedEdgeID = ""
			}

			c.notifyChangedLocked()

			return
		}
	}
}

// propagateDataLocked derives the payload a new edge carries from the source
// node into the target. The target is always marked as having an upstream,
// even when no payload exists yet, so it can render the connected state.
func (c *Canvas) propagateDataLocked(sourceID, targetID string) {
	source := c.nodeLocked(sourceID)
	target := c.nodeLocked(targetID)

	if source == nil || target == nil {
		return
	}

	var inherited map[string]any

	switch {
	case source.Data[models.DataKeyOutput] != nil:
		if out, ok := source.Data[models.DataKeyOutput].(map[string]any); ok {
			inherited = out
		}
	case hasAlias(source.Type, rules.AliasText):
		if text, ok := source.Data[models.DataKeyText].(string); ok && text != "" {
			inherited = map[string]any{"type": "text", "content": text}
		}
	case hasAlias(source.Type, rules.AliasImage):
		if urls := sourceImageURLs(source); len(urls) > 0 {
			inherited = map[string]any{"type": "image", "urls": urls}
		}
	case hasAlias(source.Type, rules.AliasVideo):
		if url, ok := source.Data[models.DataKeySourceVideo].(string); ok && url != "" {
			inherited = map[string]any{"type": "video", "url": url}
		}
	}

	partial := map[string]any{
		models.DataKeyInheritedFrom: sourceID,
		models.DataKeyHasUpstream:   true,
	}

	if inherited != nil {
		partial[models.DataKeyInheritedData] = inherited
	}

	c.updateNodeDataLocked(targetID, partial)
}

func hasAlias(t models.NodeType, alias string) bool {
	for _, a := range rules.Aliases(t) {
		if a == alias {
			return true
		}
	}

	return false
}

// sourceImageURLs collects the uploaded image urls a source node carries,
// preferring sourceImages over the richer images list.
func sourceImageURLs(n *models.Node) []any {
	if urls, ok := n.Data[models.DataKeySourceImages].([]any); ok && len(urls) > 0 {
		return urls
	}

	if imgs, ok := n.Data[models.DataKeyImages].([]any); ok && len(imgs) > 0 {
		return imgs
	}

	return nil
}
