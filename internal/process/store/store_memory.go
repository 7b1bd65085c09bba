// Package store persists licensing process records.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sentinel"
)

// InMemoryStore keeps processes in a map. Used in tests and with STORE_DRIVER=memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	processes map[domain.EntityID]*process.Process
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{processes: make(map[domain.EntityID]*process.Process)}
}

func (s *InMemoryStore) Save(_ context.Context, p *process.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.EntityID) (*process.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.processes[id]
	if !ok {
		return nil, fmt.Errorf("process %s: %w", id, sentinel.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*process.Process, error) {
	s.mu.RLock()
	out := make([]*process.Process, 0, len(s.processes))
	for _, p := range s.processes {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()
	SortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processes[id]; !ok {
		return fmt.Errorf("process %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.processes, id)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes), nil
}

// SortNewestFirst orders processes by UpdatedAt descending, then by id.
func SortNewestFirst(ps []*process.Process) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].UpdatedAt.Equal(ps[j].UpdatedAt) {
			return ps[i].UpdatedAt.After(ps[j].UpdatedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}
