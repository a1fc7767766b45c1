package graph

import (
	"testing"

	"github.com/canvion/canvion/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopySelectionMultiWithInducedEdges(t *testing.T) {
	c := newTestCanvas(t)

	a := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput, Position: models.Position{X: 0, Y: 0}}, false)
	b := c.AddNode(NodeSpec{Type: models.NodeTypeTextToImage, Position: models.Position{X: 200, Y: 0}}, false)
	outside := c.AddNode(NodeSpec{Type: models.NodeTypePreviewOutput}, false)

	require.NotNil(t, c.AddEdge(EdgeSpec{Source: a.ID, Target: b.ID}))
	require.NotNil(t, c.AddEdge(EdgeSpec{Source: b.ID, Target: outside.ID}))

	c.SetSelectedNodeIDs([]string{a.ID, b.ID})

	assert.Equal(t, 2, c.CopySelection())
	assert.True(t, c.HasClipboard())

	pasted := c.Paste(nil)
	require.Len(t, pasted, 2)

	// Only the edge with both endpoints copied is pasted.
	assert.Len(t, c.Edges(), 3)
	assert.Equal(t, 5, c.NodeCount())
}

func TestCopySelectionEmptyIsNoop(t *testing.T) {
	c := newTestCanvas(t)

	c.AddNode(NodeSpec{Type: models.NodeTypeTextInput}, false)
	c.ClearSelection()

	assert.Equal(t, 0, c.CopySelection())
	assert.False(t, c.HasClipboard())
	assert.Nil(t, c.Paste(nil))
}

func TestCopySingleSelectedNode(t *testing.T) {
	c := newTestCanvas(t)

	node := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput}, false)
	c.SelectNode(node.ID)

	assert.Equal(t, 1, c.CopySelection())

	pasted := c.Paste(nil)
	require.Len(t, pasted, 1)
	assert.Equal(t, pasted[0].ID, c.SelectedNodeID())
}

func TestPasteDefaultOffset(t *testing.T) {
	c := newTestCanvas(t)

	node := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput, Position: models.Position{X: 100, Y: 40}}, false)
	c.SelectNode(node.ID)
	c.CopySelection()

	pasted := c.Paste(nil)
	require.Len(t, pasted, 1)

	assert.InDelta(t, 150, pasted[0].Position.X, 0.001)
	assert.InDelta(t, 90, pasted[0].Position.Y, 0.001)
}

func TestPasteAtPositionTranslatesCentroid(t *testing.T) {
	c := newTestCanvas(t)

	a := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput, Position: models.Position{X: 0, Y: 0}}, false)
	b := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput, Position: models.Position{X: 100, Y: 100}}, false)

	c.SetSelectedNodeIDs([]string{a.ID, b.ID})
	c.CopySelection()

	pasted := c.Paste(&models.Position{X: 500, Y: 500})
	require.Len(t, pasted, 2)

	// Centroid (50, 50) moves to (500, 500); relative layout survives.
	var cx, cy float64

	for _, n := range pasted {
		cx += n.Position.X
		cy += n.Position.Y
	}

	assert.InDelta(t, 500, cx/2, 0.001)
	assert.InDelta(t, 500, cy/2, 0.001)
	assert.InDelta(t, 100, pasted[1].Position.X-pasted[0].Position.X, 0.001)
}

func TestPasteRemapsIdentity(t *testing.T) {
	c := newTestCanvas(t)

	a := c.AddNode(NodeSpec{ID: "a", Type: models.NodeTypeTextInput}, false)
	b := c.AddNode(NodeSpec{ID: "b", Type: models.NodeTypeTextToImage}, false)
	require.NotNil(t, c.AddEdge(EdgeSpec{Source: a.ID, Target: b.ID}))

	c.SetSelectedNodeIDs([]string{"a", "b"})
	c.CopySelection()

	pasted := c.Paste(nil)
	require.Len(t, pasted, 2)

	fresh := make(map[string]bool, len(pasted))

	for _, n := range pasted {
		assert.NotEqual(t, "a", n.ID)
		assert.NotEqual(t, "b", n.ID)
		fresh[n.ID] = true
	}

	var remapped int

	for _, e := range c.Edges() {
		if fresh[e.Source] {
			assert.True(t, fresh[e.Target])

			remapped++
		}
	}

	assert.Equal(t, 1, remapped)
}

func TestPasteSelectsPastedNodes(t *testing.T) {
	c := newTestCanvas(t)

	a := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput}, false)
	b := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput}, false)

	c.SetSelectedNodeIDs([]string{a.ID, b.ID})
	c.CopySelection()

	pasted := c.Paste(nil)
	require.Len(t, pasted, 2)

	selected := c.SelectedNodeIDs()
	require.Len(t, selected, 2)
	assert.NotContains(t, selected, a.ID)
	assert.NotContains(t, selected, b.ID)
}

func TestPasteIsUndoable(t *testing.T) {
	c := newTestCanvas(t)

	node := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput}, false)
	c.SelectNode(node.ID)
	c.CopySelection()
	c.Paste(nil)

	require.Equal(t, 2, c.NodeCount())

	c.Undo()
	assert.Equal(t, 1, c.NodeCount())
	assert.NotNil(t, c.Node(node.ID))
}

func TestPasteTwiceProducesDistinctCopies(t *testing.T) {
	c := newTestCanvas(t)

	node := c.AddNode(NodeSpec{Type: models.NodeTypeTextInput}, false)
	c.SelectNode(node.ID)
	c.CopySelection()

	first := c.Paste(nil)
	second := c.Paste(nil)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.Equal(t, 3, c.NodeCount())
}
