package models

import "encoding/json"

// CloneNode deep-copies a node by JSON round-trip. Snapshots, clipboard
// contents and tab hand-offs all rely on value copies so later edits never
// alias history.
func CloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}

	var out Node

	raw, err := json.Marshal(n)
	if err != nil {
		return nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}

	return &out
}

// CloneNodes deep-copies a node slice.
func CloneNodes(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if c := CloneNode(n); c != nil {
			out = append(out, c)
		}
	}

	return out
}

// CloneEdge deep-copies an edge.
func CloneEdge(e *Edge) *Edge {
	if e == nil {
		return nil
	}

	c := *e

	return &c
}

// CloneEdges deep-copies an edge slice.
func CloneEdges(edges []*Edge) []*Edge {
	out := make([]*Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, CloneEdge(e))
	}

	return out
}

// CloneMap deep-copies an arbitrary JSON-shaped map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}

	return out
}
