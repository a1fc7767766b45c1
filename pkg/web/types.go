package web

import "github.com/canvion/canvion/pkg/models"

// SaveWorkflowRequest is the payload for creating or updating a workflow.
type SaveWorkflowRequest struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"     validate:"required,min=1,max=200"`
	Nodes    []*models.Node   `json:"nodes"`
	Edges    []*models.Edge   `json:"edges"`
	Viewport *models.Viewport `json:"viewport"`
}

// RegisterTaskRequest registers a backend generation job for polling.
type RegisterTaskRequest struct {
	TaskID   string          `json:"taskId"   validate:"required"`
	Type     models.TaskType `json:"type"     validate:"required,oneof=image video video-hd video-hd-upscale"`
	NodeID   string          `json:"nodeId"`
	TabID    string          `json:"tabId"`
	Metadata map[string]any  `json:"metadata"`
}

// toWorkflow converts the request into a document.
func (r *SaveWorkflowRequest) toWorkflow() *models.Workflow {
	wf := &models.Workflow{
		ID:    r.ID,
		Name:  r.Name,
		Nodes: r.Nodes,
		Edges: r.Edges,
	}

	if r.Viewport != nil {
		wf.Viewport = *r.Viewport
	} else {
		wf.Viewport = models.DefaultViewport()
	}

	if wf.Nodes == nil {
		wf.Nodes = []*models.Node{}
	}

	if wf.Edges == nil {
		wf.Edges = []*models.Edge{}
	}

	return wf
}
