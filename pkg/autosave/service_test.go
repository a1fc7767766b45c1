package autosave

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticSnapshot(snap *Snapshot) SnapshotFunc {
	return func() *Snapshot { return snap }
}

func simpleWorkflow(nodeID string, x float64) *models.Workflow {
	return &models.Workflow{
		Nodes: []*models.Node{
			{
				ID:       nodeID,
				Type:     models.NodeTypeTextInput,
				Position: models.Position{X: x, Y: 10},
				Data:     map[string]any{"text": "hello"},
			},
		},
	}
}

func TestSaveNowPersistsEntry(t *testing.T) {
	store := storage.NewMemoryStore(0)
	svc := NewService(store, staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Name:     "Draft",
		Workflow: simpleWorkflow("n1", 0),
	}), testLogger())

	require.NoError(t, svc.SaveNow())

	entries := svc.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Draft", entries[0].Name)
	assert.Equal(t, "tab-1", entries[0].TabID)
	require.Len(t, entries[0].Workflow.Nodes, 1)
	assert.Equal(t, "hello", entries[0].Workflow.Nodes[0].Data["text"])
}

func TestSaveNowSkipsEmptyCanvas(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		Workflow: &models.Workflow{},
	}), testLogger())

	require.NoError(t, svc.SaveNow())
	assert.Empty(t, svc.Entries())
}

func TestDuplicateSuppressionWithinWindow(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Workflow: simpleWorkflow("n1", 0),
	}), testLogger())

	require.NoError(t, svc.SaveNow())
	require.NoError(t, svc.SaveNow())

	assert.Len(t, svc.Entries(), 1)
}

func TestDuplicateSavedAgainAfterWindow(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Workflow: simpleWorkflow("n1", 0),
	}), testLogger())

	current := time.Now()
	svc.now = func() time.Time { return current }

	require.NoError(t, svc.SaveNow())

	current = current.Add(DuplicateWindow + time.Second)
	require.NoError(t, svc.SaveNow())

	// Same tab target, so the newer save supersedes rather than stacks.
	entries := svc.Entries()
	require.Len(t, entries, 1)
}

func TestChangedGraphIsNotDuplicate(t *testing.T) {
	snap := &Snapshot{TabID: "tab-1", Workflow: simpleWorkflow("n1", 0)}
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(snap), testLogger())

	require.NoError(t, svc.SaveNow())

	snap.Workflow = simpleWorkflow("n1", 99)
	require.NoError(t, svc.SaveNow())

	entries := svc.Entries()
	require.Len(t, entries, 1, "same tab supersedes")
	assert.InDelta(t, 99, entries[0].Workflow.Nodes[0].Position.X, 0.001)
}

func TestDifferentTabsKeepSeparateEntries(t *testing.T) {
	store := storage.NewMemoryStore(0)
	snap := &Snapshot{TabID: "tab-1", Workflow: simpleWorkflow("n1", 0)}
	svc := NewService(store, staticSnapshot(snap), testLogger())

	require.NoError(t, svc.SaveNow())

	snap.TabID = "tab-2"
	snap.Workflow = simpleWorkflow("n2", 5)
	require.NoError(t, svc.SaveNow())

	assert.Len(t, svc.Entries(), 2)
}

func TestOversizedSnapshotSkipped(t *testing.T) {
	wf := simpleWorkflow("n1", 0)
	// Below the per-field strip limit but repeated until the entry blows
	// past the per-entry cap.
	filler := strings.Repeat("x", 9*1024)
	for i := range 40 {
		wf.Nodes = append(wf.Nodes, &models.Node{
			ID:   ids(i),
			Type: models.NodeTypeTextInput,
			Data: map[string]any{"text": filler},
		})
	}

	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Workflow: wf,
	}), testLogger())

	require.NoError(t, svc.SaveNow())
	assert.Empty(t, svc.Entries())
}

func ids(i int) string {
	return "filler-" + strings.Repeat("a", i%5+1)
}

func TestQuotaPressureHalvesHistory(t *testing.T) {
	// Small quota forces the halve-and-retry path.
	store := storage.NewMemoryStore(2 * 1024)
	snap := &Snapshot{TabID: "tab-1", Workflow: simpleWorkflow("n1", 0)}
	svc := NewService(store, staticSnapshot(snap), testLogger())

	for i := range 30 {
		snap.TabID = "tab-" + strings.Repeat("t", i%10+1)
		snap.Workflow = simpleWorkflow("n1", float64(i))
		require.NoError(t, svc.SaveNow())
	}

	// History survived quota pressure and stayed within bounds.
	assert.NotEmpty(t, svc.Entries())
}

func TestExpiredEntriesPrunedOnRead(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Workflow: simpleWorkflow("n1", 0),
	}), testLogger())

	past := time.Now().Add(-25 * time.Hour)
	svc.now = func() time.Time { return past }
	require.NoError(t, svc.SaveNow())

	svc.now = time.Now
	assert.Empty(t, svc.Entries())
}

func TestEntryLookupAndDelete(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Workflow: simpleWorkflow("n1", 0),
	}), testLogger())

	require.NoError(t, svc.SaveNow())

	entries := svc.Entries()
	require.Len(t, entries, 1)

	got, err := svc.Entry(entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Hash, got.Hash)

	_, err = svc.Entry("autosave-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, svc.Delete(entries[0].ID))
	assert.Empty(t, svc.Entries())
}

func TestClear(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(0), staticSnapshot(&Snapshot{
		TabID:    "tab-1",
		Workflow: simpleWorkflow("n1", 0),
	}), testLogger())

	require.NoError(t, svc.SaveNow())
	require.NoError(t, svc.Clear())
	assert.Empty(t, svc.Entries())

	stats := svc.Stats()
	assert.Zero(t, stats.Entries)
}

func TestSanitizeStripsInlineMedia(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{
				ID:   "n1",
				Type: models.NodeTypeImageInput,
				Data: map[string]any{
					"images": []any{
						"data:image/png;base64,iVBORw0KGgo=",
						"blob:http://localhost/123-456",
						"https://cdn.example.com/keep.png",
					},
					"note": "short text",
				},
			},
		},
	}

	sanitizeWorkflow(wf)

	images, ok := wf.Nodes[0].Data["images"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"[BASE64:image/png]", "https://cdn.example.com/keep.png"}, images)
	assert.Equal(t, "short text", wf.Nodes[0].Data["note"])
}

func TestSanitizeTruncatesHugeFieldsAndResults(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{
				ID:   "n1",
				Type: models.NodeTypeTextInput,
				Data: map[string]any{
					"text": strings.Repeat("x", maxFieldBytes+100),
					models.DataKeyOutput: map[string]any{
						"content": strings.Repeat("y", maxResultBytes+1),
					},
				},
			},
		},
	}

	sanitizeWorkflow(wf)

	// Oversized strings keep the key, cut to the cap with a marker.
	text, ok := wf.Nodes[0].Data["text"].(string)
	require.True(t, ok)
	assert.Len(t, text, maxFieldBytes+len(truncatedSuffix))
	assert.True(t, strings.HasSuffix(text, truncatedSuffix))

	output, ok := wf.Nodes[0].Data[models.DataKeyOutput].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, output["truncated"])
}
