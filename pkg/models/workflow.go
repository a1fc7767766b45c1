package models

// Viewport is the visible region of the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the origin viewport at 1x zoom.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// Workflow is the exported document form of a canvas graph. This is the unit
// exchanged with the external persistence service and with the autosave ring.
type Workflow struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	Nodes    []*Node  `json:"nodes"    validate:"dive"`
	Edges    []*Edge  `json:"edges"    validate:"dive"`
	Viewport Viewport `json:"viewport"`
}
