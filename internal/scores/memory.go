// internal/scores/memory.go
//
// In-memory implementation of the Store interface.
// Used for development and tests, or when durability is not required.
//
// Characteristics:
//   - Records are grouped by partition in insertion order.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package scores

import (
	"context"
	"slices"
	"sort"
	"sync"
)

type memory struct {
	mu    sync.RWMutex
	parts map[Partition][]Record
	byID  map[string]Partition
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		parts: make(map[Partition][]Record),
		byID:  make(map[string]Partition),
	}
}

func (m *memory) Append(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := r.Partition()
	m.parts[p] = append(m.parts[p], r)
	m.byID[r.ID] = p
	return nil
}

// List copies the partition, sorts it stably so insertion order breaks exact
// ties, and truncates to the limit.
func (m *memory) List(ctx context.Context, f Filter) ([]Record, error) {
	m.mu.RLock()
	out := slices.Clone(m.parts[f.Partition])
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return Ranks(out[i], out[j]) })
	if n := f.EffectiveLimit(); len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (m *memory) Remove(ctx context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	recs := m.parts[p]
	i := slices.IndexFunc(recs, func(r Record) bool { return r.ID == id })
	r := recs[i]
	m.parts[p] = slices.Delete(recs, i, i+1)
	delete(m.byID, id)
	return r, nil
}

func (m *memory) Close() error { return nil }
