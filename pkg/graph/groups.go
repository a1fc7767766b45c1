package graph

import (
	"github.com/canvion/canvion/pkg/models"
	"github.com/google/uuid"
)

// groupColor pairs a translucent fill with its border color. The palette
// cycles by group index.
type groupColor struct {
	bg     string
	border string
}

var groupPalette = []groupColor{
	{bg: "rgba(100, 116, 139, 0.08)", border: "rgba(100, 116, 139, 0.25)"},
	{bg: "rgba(107, 114, 128, 0.08)", border: "rgba(107, 114, 128, 0.25)"},
	{bg: "rgba(99, 102, 241, 0.08)", border: "rgba(99, 102, 241, 0.25)"},
	{bg: "rgba(139, 92, 246, 0.08)", border: "rgba(139, 92, 246, 0.25)"},
	{bg: "rgba(59, 130, 246, 0.08)", border: "rgba(59, 130, 246, 0.25)"},
	{bg: "rgba(16, 185, 129, 0.08)", border: "rgba(16, 185, 129, 0.25)"},
}

// CreateGroup groups the given nodes under a new group record and tags each
// member with the group id. Requires at least two node ids; otherwise logs a
// warning and returns nil.
func (c *Canvas) CreateGroup(nodeIDs []string, name string) *models.Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(nodeIDs) < 2 {
		c.logger.Warn("group creation requires at least 2 nodes", "got", len(nodeIDs))

		return nil
	}

	c.saveHistoryLocked()

	if name == "" {
		name = "New Group"
	}

	color := groupPalette[len(c.groups)%len(groupPalette)]

	group := &models.Group{
		ID:          "group-" + uuid.NewString(),
		Name:        name,
		NodeIDs:     append([]string(nil), nodeIDs...),
		Color:       color.bg,
		BorderColor: color.border,
	}

	c.groups = append(c.groups, group)

	for _, id := range nodeIDs {
		c.updateNodeDataLocked(id, map[string]any{
			models.DataKeyGroupID:    group.ID,
			models.DataKeyGroupColor: color.bg,
		})
	}

	c.notifyChangedLocked()

	return group
}

// DisbandGroup removes a group and clears every member's back-reference.
// Member nodes are kept and become draggable again. Absent ids are a no-op.
func (c *Canvas) DisbandGroup(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var group *models.Group

	idx := -1

	for i, g := range c.groups {
		if g.ID == groupID {
			group = g
			idx = i

			break
		}
	}

	if group == nil {
		return
	}

	c.saveHistoryLocked()

	for _, id := range group.NodeIDs {
		if node := c.nodeLocked(id); node != nil {
			node.Draggable = true
			c.updateNodeDataLocked(id, map[string]any{
				models.DataKeyGroupID:    nil,
				models.DataKeyGroupColor: nil,
			})
		}
	}

	c.groups = append(c.groups[:idx], c.groups[idx+1:]...)
	c.notifyChangedLocked()
}

// Groups returns the group records.
func (c *Canvas) Groups() []*models.Group {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.Group, 0, len(c.groups))

	for _, g := range c.groups {
		cp := *g
		cp.NodeIDs = append([]string(nil), g.NodeIDs...)
		out = append(out, &cp)
	}

	return out
}
