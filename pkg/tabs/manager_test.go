package tabs

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/canvion/canvion/pkg/graph"
	"github.com/canvion/canvion/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *graph.Canvas) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	canvas := graph.NewCanvas(logger)

	return NewManager(canvas, logger), canvas
}

func TestNewManagerStartsWithOneTab(t *testing.T) {
	m, _ := newTestManager(t)

	tabs := m.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, "Untitled", tabs[0].Name)
	assert.False(t, tabs[0].HasChanges)
}

func TestCreateTabCap(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 1; i < MaxTabs; i++ {
		require.NotNil(t, m.CreateTab(fmt.Sprintf("Tab %d", i)))
	}

	assert.Len(t, m.Tabs(), MaxTabs)
	assert.Nil(t, m.CreateTab("one too many"))
	assert.Len(t, m.Tabs(), MaxTabs)
}

func TestSwitchToTabIsolatesState(t *testing.T) {
	m, canvas := newTestManager(t)

	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeTextInput}, false)
	first := m.ActiveTab()
	require.Len(t, first.Nodes, 1)

	second := m.CreateTab("second")
	require.NotNil(t, second)
	assert.True(t, canvas.IsEmpty())

	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeImageInput}, false)
	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeTextToImage}, false)

	require.NoError(t, m.SwitchToTab(first.ID))
	assert.Equal(t, 1, canvas.NodeCount())
	assert.Equal(t, models.NodeTypeTextInput, canvas.Nodes()[0].Type)

	require.NoError(t, m.SwitchToTab(second.ID))
	assert.Equal(t, 2, canvas.NodeCount())
}

func TestSwitchToUnknownTab(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Error(t, m.SwitchToTab("tab-missing"))
}

func TestDirtyBitFollowsCanvasChanges(t *testing.T) {
	m, canvas := newTestManager(t)

	assert.False(t, m.ActiveTab().HasChanges)

	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeTextInput}, false)
	assert.True(t, m.ActiveTab().HasChanges)

	m.MarkCurrentTabSaved("wf-1")
	active := m.ActiveTab()
	assert.False(t, active.HasChanges)
	assert.Equal(t, "wf-1", active.WorkflowID)
}

func TestSwitchDoesNotBleedDirtyBit(t *testing.T) {
	m, canvas := newTestManager(t)

	first := m.ActiveTab()
	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeTextInput}, false)

	second := m.CreateTab("second")
	require.NotNil(t, second)
	assert.False(t, m.ActiveTab().HasChanges)

	require.NoError(t, m.SwitchToTab(first.ID))
	assert.True(t, m.ActiveTab().HasChanges)
}

func TestCloseLastTabLeavesNoOpenTabs(t *testing.T) {
	m, canvas := newTestManager(t)

	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeTextInput}, false)
	tab := m.ActiveTab()

	require.NoError(t, m.CloseTab(tab.ID))

	assert.Empty(t, m.Tabs())
	assert.Nil(t, m.ActiveTab())
	assert.True(t, canvas.IsEmpty())
}

func TestManagerRecoversFromNoOpenTabs(t *testing.T) {
	m, canvas := newTestManager(t)

	require.NoError(t, m.CloseTab(m.ActiveTab().ID))
	require.Empty(t, m.Tabs())

	// Mark calls must not blow up while no tab is open.
	m.MarkCurrentTabChanged()
	m.MarkCurrentTabSaved("wf-ignored")

	tab := m.CreateTab("fresh")
	require.NotNil(t, tab)
	assert.Equal(t, tab.ID, m.ActiveTab().ID)

	require.NoError(t, m.CloseTab(tab.ID))
	require.Empty(t, m.Tabs())

	wf := &models.Workflow{
		ID:   "wf-3",
		Name: "Moodboard",
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeImageInput, Data: map[string]any{}},
		},
	}

	opened, err := m.OpenWorkflow(wf)
	require.NoError(t, err)
	assert.Equal(t, "wf-3", opened.WorkflowID)
	assert.Len(t, m.Tabs(), 1)
	assert.Equal(t, 1, canvas.NodeCount())
}

func TestCloseActiveTabActivatesNeighbor(t *testing.T) {
	m, canvas := newTestManager(t)

	first := m.ActiveTab()
	second := m.CreateTab("second")
	third := m.CreateTab("third")
	require.NotNil(t, second)
	require.NotNil(t, third)

	require.NoError(t, m.SwitchToTab(second.ID))
	canvasNodes := canvas.NodeCount()
	assert.Zero(t, canvasNodes)

	require.NoError(t, m.CloseTab(second.ID))

	// The tab that took the closed tab's slot becomes active.
	assert.Equal(t, third.ID, m.ActiveTab().ID)

	require.NoError(t, m.CloseTab(third.ID))
	assert.Equal(t, first.ID, m.ActiveTab().ID)
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	m, _ := newTestManager(t)

	first := m.ActiveTab()
	second := m.CreateTab("second")
	require.NotNil(t, second)

	require.NoError(t, m.CloseTab(first.ID))
	assert.Equal(t, second.ID, m.ActiveTab().ID)
	assert.Len(t, m.Tabs(), 1)
}

func TestOpenWorkflowReusesEmptyTab(t *testing.T) {
	m, canvas := newTestManager(t)

	wf := &models.Workflow{
		ID:   "wf-9",
		Name: "Storyboard",
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTextInput, Data: map[string]any{}},
		},
	}

	tab, err := m.OpenWorkflow(wf)
	require.NoError(t, err)

	assert.Equal(t, "Storyboard", tab.Name)
	assert.Equal(t, "wf-9", tab.WorkflowID)
	assert.False(t, tab.HasChanges)
	assert.Len(t, m.Tabs(), 1)
	assert.Equal(t, 1, canvas.NodeCount())
}

func TestOpenWorkflowAddsTabWhenCurrentInUse(t *testing.T) {
	m, canvas := newTestManager(t)

	canvas.AddNode(graph.NodeSpec{Type: models.NodeTypeTextInput}, false)

	wf := &models.Workflow{ID: "wf-2", Name: "Other"}

	tab, err := m.OpenWorkflow(wf)
	require.NoError(t, err)
	assert.Len(t, m.Tabs(), 2)
	assert.Equal(t, tab.ID, m.ActiveTab().ID)
}

func TestRenameTab(t *testing.T) {
	m, _ := newTestManager(t)

	tab := m.ActiveTab()
	require.NoError(t, m.RenameTab(tab.ID, "Renamed"))
	assert.Equal(t, "Renamed", m.ActiveTab().Name)
	assert.Error(t, m.RenameTab("tab-missing", "x"))
}
