package models

// Group is a named multi-selection of nodes. Membership is a weak reference:
// member nodes carry the group id in their data bag, and disbanding a group
// never deletes nodes.
type Group struct {
	ID          string   `json:"id"          validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	NodeIDs     []string `json:"nodeIds"     validate:"min=2"`
	Color       string   `json:"color"`
	BorderColor string   `json:"borderColor"`
}

// Contains reports whether the node id is a member of the group.
func (g *Group) Contains(nodeID string) bool {
	for _, id := range g.NodeIDs {
		if id == nodeID {
			return true
		}
	}

	return false
}
