// Package autosave periodically snapshots the active workflow into a bounded
// history, so an interrupted session can be restored. Snapshots are
// sanitized, deduplicated and evicted oldest-first when space runs out.
package autosave

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/canvion/canvion/pkg/models"
	"github.com/canvion/canvion/pkg/storage"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	// StorageKey holds the autosave history.
	StorageKey = "workflow_auto_saves"

	// Interval is the save cadence.
	Interval = 60 * time.Second

	// MaxEntries bounds the history length.
	MaxEntries = 20

	// MaxAge is how long an entry stays restorable; older entries are
	// pruned lazily on read.
	MaxAge = 24 * time.Hour

	// MaxEntryBytes is the cap on one serialized snapshot. Bigger
	// snapshots are skipped rather than saved partially.
	MaxEntryBytes = 300 * 1024

	// MaxTotalBytes is the cap on the whole serialized history. Oldest
	// entries are evicted until a new snapshot fits.
	MaxTotalBytes = 3 * 1024 * 1024

	// DuplicateWindow suppresses back-to-back saves of an unchanged
	// graph.
	DuplicateWindow = 30 * time.Second
)

// Entry is one saved snapshot.
type Entry struct {
	ID         string           `json:"id"`
	WorkflowID string           `json:"workflowId,omitempty"`
	TabID      string           `json:"tabId,omitempty"`
	Name       string           `json:"name"`
	Workflow   *models.Workflow `json:"workflow"`
	SavedAt    time.Time        `json:"savedAt"`
	Hash       string           `json:"hash"`
}

// Snapshot is what the service samples each tick.
type Snapshot struct {
	WorkflowID string
	TabID      string
	Name       string
	Workflow   *models.Workflow
}

// SnapshotFunc supplies the current snapshot. Return nil to skip a tick,
// e.g. when the canvas is empty.
type SnapshotFunc func() *Snapshot

// Stats summarizes storage consumption.
type Stats struct {
	Entries    int `json:"entries"`
	TotalBytes int `json:"totalBytes"`
}

// Service drives periodic autosaving.
type Service struct {
	mu       sync.Mutex
	store    storage.KV
	snapshot SnapshotFunc
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the sampler. Call Start to begin the schedule; SaveNow
// works without it.
func NewService(store storage.KV, snapshot SnapshotFunc, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		snapshot: snapshot,
		logger:   logger.With("module", "autosave"),
		now:      time.Now,
	}
}

// Start begins sampling on the autosave interval.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	s.cron = cron.New()

	spec := fmt.Sprintf("@every %s", Interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.SaveNow(); err != nil {
			s.logger.Warn("autosave failed", "error", err)
		}
	}); err != nil {
		s.cron = nil

		return fmt.Errorf("schedule autosave: %w", err)
	}

	s.cron.Start()
	s.logger.Info("autosave started", "interval", Interval)

	return nil
}

// Stop halts the schedule. In-flight saves finish.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// SaveNow samples and persists one snapshot. Empty canvases, oversized
// snapshots and unchanged graphs inside the duplicate window are all
// skipped without error.
func (s *Service) SaveNow() error {
	if s.snapshot == nil {
		return nil
	}

	snap := s.snapshot()
	if snap == nil || snap.Workflow == nil || len(snap.Workflow.Nodes) == 0 {
		return nil
	}

	wf := &models.Workflow{
		ID:       snap.Workflow.ID,
		Name:     snap.Workflow.Name,
		Nodes:    models.CloneNodes(snap.Workflow.Nodes),
		Edges:    models.CloneEdges(snap.Workflow.Edges),
		Viewport: snap.Workflow.Viewport,
	}
	sanitizeWorkflow(wf)

	entry := Entry{
		ID:         "autosave-" + uuid.NewString(),
		WorkflowID: snap.WorkflowID,
		TabID:      snap.TabID,
		Name:       snap.Name,
		Workflow:   wf,
		SavedAt:    s.now().UTC(),
		Hash:       graphHash(wf),
	}

	size, err := entrySize(entry)
	if err != nil {
		return fmt.Errorf("measure autosave entry: %w", err)
	}

	if size > MaxEntryBytes {
		s.logger.Warn("autosave skipped, snapshot too large", "bytes", size)

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()

	if s.isDuplicateLocked(entries, entry) {
		return nil
	}

	// A newer save of the same workflow or tab supersedes older ones.
	entries = supersede(entries, entry)
	entries = append(entries, entry)

	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}

	entries = evictToFit(entries)

	return s.persistLocked(entries)
}

// Entries returns the restorable history, newest last. Expired entries are
// pruned as a side effect.
func (s *Service) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()
	fresh := s.pruneExpiredLocked(entries)

	out := make([]Entry, len(fresh))
	copy(out, fresh)

	return out
}

// Entry returns one saved snapshot by ID.
func (s *Service) Entry(id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.pruneExpiredLocked(s.loadLocked()) {
		if entry.ID == id {
			return &entry, nil
		}
	}

	return nil, fmt.Errorf("autosave %s: %w", id, storage.ErrNotFound)
}

// Delete removes one entry.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()
	kept := entries[:0]

	for _, entry := range entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}

	return s.persistLocked(kept)
}

// Clear wipes the history.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Delete(StorageKey)
}

// Stats reports the current history footprint.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLocked()

	data, err := json.Marshal(entries)
	if err != nil {
		return Stats{Entries: len(entries)}
	}

	return Stats{Entries: len(entries), TotalBytes: len(data)}
}

func (s *Service) loadLocked() []Entry {
	data, err := s.store.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("autosave history load failed", "error", err)
		}

		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("autosave history is corrupt, discarding", "error", err)

		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SavedAt.Before(entries[j].SavedAt)
	})

	return entries
}

// persistLocked writes the history. On quota pressure it halves the history
// and retries, clearing everything as the last resort.
func (s *Service) persistLocked(entries []Entry) error {
	for {
		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal autosave history: %w", err)
		}

		err = s.store.Set(StorageKey, data)
		if err == nil {
			return nil
		}

		if !errors.Is(err, storage.ErrQuotaExceeded) {
			return fmt.Errorf("persist autosave history: %w", err)
		}

		if len(entries) <= 1 {
			s.logger.Warn("autosave storage exhausted, clearing history")

			return s.store.Delete(StorageKey)
		}

		entries = entries[len(entries)/2:]
		s.logger.Warn("autosave storage full, dropping oldest half", "kept", len(entries))
	}
}

func (s *Service) pruneExpiredLocked(entries []Entry) []Entry {
	cutoff := s.now().Add(-MaxAge)
	fresh := entries[:0]

	for _, entry := range entries {
		if entry.SavedAt.After(cutoff) {
			fresh = append(fresh, entry)
		}
	}

	if len(fresh) != len(entries) {
		if err := s.persistLocked(fresh); err != nil {
			s.logger.Warn("autosave prune persist failed", "error", err)
		}
	}

	return fresh
}

// isDuplicateLocked reports whether an identical graph for the same target
// was saved inside the duplicate window.
func (s *Service) isDuplicateLocked(entries []Entry, candidate Entry) bool {
	for i := len(entries) - 1; i >= 0; i-- {
		prev := entries[i]
		if !sameTarget(prev, candidate) {
			continue
		}

		return prev.Hash == candidate.Hash &&
			candidate.SavedAt.Sub(prev.SavedAt) < DuplicateWindow
	}

	return false
}

func sameTarget(a, b Entry) bool {
	if a.WorkflowID != "" || b.WorkflowID != "" {
		return a.WorkflowID == b.WorkflowID
	}

	return a.TabID == b.TabID
}

// supersede drops previous saves of the same workflow or tab.
func supersede(entries []Entry, candidate Entry) []Entry {
	kept := entries[:0]

	for _, entry := range entries {
		if !sameTarget(entry, candidate) {
			kept = append(kept, entry)
		}
	}

	return kept
}

// evictToFit drops oldest entries until the serialized history fits the
// total cap.
func evictToFit(entries []Entry) []Entry {
	for len(entries) > 1 {
		data, err := json.Marshal(entries)
		if err != nil || len(data) <= MaxTotalBytes {
			return entries
		}

		entries = entries[1:]
	}

	return entries
}

func entrySize(entry Entry) (int, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return 0, err
	}

	return len(data), nil
}

// graphHash fingerprints node identity and placement. Matching hashes inside
// the duplicate window mean the graph has not moved since the last save.
func graphHash(wf *models.Workflow) string {
	ids := make([]string, 0, len(wf.Nodes))
	byID := make(map[string]*models.Node, len(wf.Nodes))

	for _, node := range wf.Nodes {
		ids = append(ids, node.ID)
		byID[node.ID] = node
	}

	sort.Strings(ids)

	h := fnv.New64a()

	for _, id := range ids {
		node := byID[id]
		fmt.Fprintf(h, "%s:%.2f:%.2f;", id, node.Position.X, node.Position.Y)
	}

	fmt.Fprintf(h, "e%d", len(wf.Edges))

	return fmt.Sprintf("%x", h.Sum64())
}
