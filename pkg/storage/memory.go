package storage

import "sync"

// MemoryStore is an in-memory KV with an optional byte quota across all
// values. A quota of zero means unlimited. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	quota    int
	usedSize int
}

// NewMemoryStore creates an in-memory store capped at quota bytes of value
// data. Pass 0 for no cap.
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.usedSize - len(s.data[key]) + len(value)
	if s.quota > 0 && next > s.quota {
		return ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.data[key] = stored
	s.usedSize = next

	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.data[key]; ok {
		s.usedSize -= len(value)
		delete(s.data, key)
	}

	return nil
}

// Used reports the bytes of value data currently stored.
func (s *MemoryStore) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.usedSize
}
