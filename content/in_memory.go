package content

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/memorymesh/core"
)

// InMemoryStore is a process-local core.ContentStore useful for tests,
// examples and single-process prototypes. Addresses are derived from the
// record's serialized bytes, so identical records collide to the same address
// exactly like a real content-addressable network.
//
// Concurrency: protected by RWMutex. No eviction, no size limits.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryStore returns an empty in-memory content store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

// Write stores the record under its content-derived address.
func (s *InMemoryStore) Write(_ context.Context, record core.Record) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	cid := addressOf(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[cid] = data
	return cid, nil
}

// Read returns the record stored at cid or core.ErrNotFound.
func (s *InMemoryStore) Read(_ context.Context, cid string) (core.Record, error) {
	s.mu.RLock()
	data, ok := s.objects[cid]
	s.mu.RUnlock()
	if !ok {
		return core.Record{}, fmt.Errorf("content %s: %w", cid, core.ErrNotFound)
	}
	var record core.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return core.Record{}, &core.FetchError{CID: cid, Err: err}
	}
	return record, nil
}

// addressOf derives a deterministic pseudo-CID from payload bytes. The shape
// loosely resembles a CIDv1 string but carries no multicodec semantics.
func addressOf(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("bafk%x", sum[:16])
}
