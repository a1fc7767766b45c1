package file

import (
	"testing"

	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkflow(id, name string) *models.Workflow {
	return &models.Workflow{
		ID:   id,
		Name: name,
		Nodes: []*models.Node{
			{
				ID:       "n1",
				Type:     models.NodeTypeTextInput,
				Position: models.Position{X: 100, Y: 200},
				Data:     map[string]any{"text": "hello"},
			},
		},
		Edges:    []*models.Edge{},
		Viewport: models.DefaultViewport(),
	}
}

func TestSaveAndGetByID(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.WorkflowRepository()

	wf := testWorkflow("wf-1", "First")
	require.NoError(t, repo.Save(t.Context(), wf))

	got, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, models.NodeTypeTextInput, got.Nodes[0].Type)
	assert.Equal(t, "hello", got.Nodes[0].Data["text"])
}

func TestGetByIDNotFound(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.WorkflowRepository().GetByID(t.Context(), "missing")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	p := NewPersistence(t.TempDir())

	err := p.WorkflowRepository().Save(t.Context(), &models.Workflow{Name: "no id"})
	assert.ErrorIs(t, err, persistence.ErrInvalidWorkflow)
}

func TestGetAllSortsByName(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.WorkflowRepository()

	require.NoError(t, repo.Save(t.Context(), testWorkflow("wf-b", "Beta")))
	require.NoError(t, repo.Save(t.Context(), testWorkflow("wf-a", "Alpha")))

	all, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Beta", all[1].Name)
}

func TestGetAllEmptyRoot(t *testing.T) {
	p := NewPersistence(t.TempDir())

	all, err := p.WorkflowRepository().GetAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.WorkflowRepository()

	require.NoError(t, repo.Save(t.Context(), testWorkflow("wf-1", "First")))
	require.NoError(t, repo.Delete(t.Context(), "wf-1"))

	_, err := repo.GetByID(t.Context(), "wf-1")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	assert.ErrorIs(t, repo.Delete(t.Context(), "wf-1"), persistence.ErrWorkflowNotFound)
}

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, NewPersistence(dir).HealthCheck(t.Context()))
	assert.Error(t, NewPersistence(dir+"/nope").HealthCheck(t.Context()))
}
