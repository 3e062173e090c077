package jurisdiction

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"zonecheck/internal/model"
)

// MemorySource serves jurisdiction data held in memory. The zonectl check
// command feeds it from GeoJSON files; tests use it in place of PostgreSQL.
type MemorySource struct {
	mu   sync.RWMutex
	data map[string]*Data
}

// NewMemorySource creates a source holding the given data.
func NewMemorySource(data ...*Data) *MemorySource {
	s := &MemorySource{data: make(map[string]*Data, len(data))}
	for _, d := range data {
		s.Put(d)
	}
	return s
}

// Put adds or replaces a jurisdiction.
func (s *MemorySource) Put(d *Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[d.Jurisdiction.ID] = d
}

// Delete removes a jurisdiction.
func (s *MemorySource) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
}

// ListJurisdictions implements Source.
func (s *MemorySource) ListJurisdictions(ctx context.Context) ([]model.Jurisdiction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Jurisdiction, 0, len(s.data))
	for _, d := range s.data {
		out = append(out, d.Jurisdiction)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Load implements Source.
func (s *MemorySource) Load(ctx context.Context, id string) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJurisdiction, id)
	}
	return d, nil
}
