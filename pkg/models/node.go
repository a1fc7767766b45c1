// Package models defines the core graph models for the canvas workflow editor.
package models

// NodeType identifies what a canvas node does.
type NodeType string

// Input nodes.
const (
	NodeTypeTextInput  NodeType = "text-input"
	NodeTypeImageInput NodeType = "image-input"
	NodeTypeVideoInput NodeType = "video-input"
	NodeTypeAudioInput NodeType = "audio-input"
)

// Generation nodes.
const (
	NodeTypeTextToImage  NodeType = "text-to-image"
	NodeTypeImageToImage NodeType = "image-to-image"
	NodeTypeTextToVideo  NodeType = "text-to-video"
	NodeTypeImageToVideo NodeType = "image-to-video"
)

// LLM nodes.
const (
	NodeTypeLLMPromptEnhance NodeType = "llm-prompt-enhance"
	NodeTypeLLMImageDescribe NodeType = "llm-image-describe"
	NodeTypeLLMContentExpand NodeType = "llm-content-expand"
	NodeTypeLLMStoryboard    NodeType = "llm-storyboard"
)

// Image editing nodes.
const (
	NodeTypeImageRepaint NodeType = "image-repaint"
	NodeTypeImageErase   NodeType = "image-erase"
	NodeTypeImageUpscale NodeType = "image-upscale"
	NodeTypeImageCutout  NodeType = "image-cutout"
	NodeTypeImageExpand  NodeType = "image-expand"
)

// Output nodes.
const (
	NodeTypePreviewOutput NodeType = "preview-output"
	NodeTypeGridPreview   NodeType = "grid-preview"
)

// NodeStatus defines the execution state a node renders.
type NodeStatus string

const (
	NodeStatusIdle      NodeStatus = "idle"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusFailed    NodeStatus = "failed"
)

// Well-known keys inside Node.Data. The data bag is dynamically shaped per
// node type; these are the envelope fields every node carries plus the fields
// edge propagation reads and writes.
const (
	DataKeyStatus        = "status"
	DataKeyTitle         = "title"
	DataKeyEstimatedCost = "estimatedCost"
	DataKeyGroupID       = "groupId"
	DataKeyGroupColor    = "groupColor"
	DataKeyOutput        = "output"
	DataKeyText          = "text"
	DataKeyImages        = "images"
	DataKeySourceImages  = "sourceImages"
	DataKeySourceVideo   = "sourceVideo"
	DataKeyInheritedFrom = "inheritedFrom"
	DataKeyInheritedData = "inheritedData"
	DataKeyHasUpstream   = "hasUpstream"
)

// Position is a node location in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a single unit of work or data on the canvas.
type Node struct {
	ID         string         `json:"id"       validate:"required"`
	Type       NodeType       `json:"type"     validate:"required"`
	Position   Position       `json:"position"`
	ZIndex     int            `json:"zIndex"`
	Draggable  bool           `json:"draggable"`
	Selectable bool           `json:"selectable"`
	Data       map[string]any `json:"data"`
}

// Status returns the node's execution status, defaulting to idle.
func (n *Node) Status() NodeStatus {
	if s, ok := n.Data[DataKeyStatus].(string); ok && s != "" {
		return NodeStatus(s)
	}

	return NodeStatusIdle
}

// SetStatus stores the execution status in the node's data bag.
func (n *Node) SetStatus(status NodeStatus) {
	if n.Data == nil {
		n.Data = make(map[string]any)
	}

	n.Data[DataKeyStatus] = string(status)
}

// Title returns the display title stored in the data bag.
func (n *Node) Title() string {
	if t, ok := n.Data[DataKeyTitle].(string); ok {
		return t
	}

	return ""
}

// GroupID returns the id of the group this node belongs to, or "" when
// ungrouped.
func (n *Node) GroupID() string {
	if g, ok := n.Data[DataKeyGroupID].(string); ok {
		return g
	}

	return ""
}

// HasUpstream reports whether edge propagation has marked this node as having
// a connected upstream node.
func (n *Node) HasUpstream() bool {
	v, ok := n.Data[DataKeyHasUpstream].(bool)

	return ok && v
}

// DefaultTitle returns the human title used when a node is created without
// one.
func DefaultTitle(t NodeType) string {
	titles := map[NodeType]string{
		NodeTypeTextInput:        "Text Input",
		NodeTypeImageInput:       "Image Upload",
		NodeTypeVideoInput:       "Video Upload",
		NodeTypeAudioInput:       "Audio Upload",
		NodeTypeTextToImage:      "Image Generation",
		NodeTypeImageToImage:     "Image Transform",
		NodeTypeTextToVideo:      "Video Generation",
		NodeTypeImageToVideo:     "Image to Video",
		NodeTypeLLMPromptEnhance: "Prompt Enhance",
		NodeTypeLLMImageDescribe: "Image Describe",
		NodeTypeLLMContentExpand: "Content Expand",
		NodeTypeLLMStoryboard:    "Storyboard",
		NodeTypeImageRepaint:     "Repaint",
		NodeTypeImageErase:       "Erase",
		NodeTypeImageUpscale:     "Upscale",
		NodeTypeImageCutout:      "Cutout",
		NodeTypeImageExpand:      "Expand",
		NodeTypePreviewOutput:    "Preview",
		NodeTypeGridPreview:      "Grid Preview",
	}

	if title, ok := titles[t]; ok {
		return title
	}

	return "Node"
}
