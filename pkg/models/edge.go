package models

// Default handle names for canvas connections.
const (
	HandleOutput = "output"
	HandleInput  = "input"
)

// Edge is a directed connection carrying data from one node's output handle
// to another node's input handle.
type Edge struct {
	ID           string `json:"id"           validate:"required"`
	Source       string `json:"source"       validate:"required"`
	Target       string `json:"target"       validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// EdgeID derives the canonical edge id for an ordered (source, target) pair.
func EdgeID(source, target string) string {
	return "e-" + source + "-" + target
}
