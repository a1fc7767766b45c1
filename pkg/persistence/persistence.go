// Package persistence defines the repository contract for saved workflows.
package persistence

import (
	"context"

	"github.com/canvion/canvion/pkg/models"
)

// WorkflowRepository stores and retrieves workflow documents.
type WorkflowRepository interface {
	// GetAll returns every saved workflow.
	GetAll(ctx context.Context) ([]*models.Workflow, error)

	// GetByID returns one workflow or ErrWorkflowNotFound.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)

	// Save writes a workflow, overwriting any existing document with the
	// same ID.
	Save(ctx context.Context, workflow *models.Workflow) error

	// Delete removes a workflow. Missing IDs return ErrWorkflowNotFound.
	Delete(ctx context.Context, id string) error
}

// Persistence is the top-level storage handle.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
