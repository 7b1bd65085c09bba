package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
)

// InMemoryStore keeps rules in a map. Used in tests and with STORE_DRIVER=memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	rules map[string]risk.Rule
}

func NewInMemoryStore(seed ...risk.Rule) *InMemoryStore {
	s := &InMemoryStore{rules: make(map[string]risk.Rule, len(seed))}
	for _, r := range seed {
		r = r.Normalize()
		s.rules[r.Code] = r
	}
	return s
}

func (s *InMemoryStore) LoadRules(_ context.Context) ([]risk.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make([]risk.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Code < rules[j].Code })
	return rules, nil
}

func (s *InMemoryStore) UpsertRule(_ context.Context, rule risk.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.Code] = rule
	return nil
}

func (s *InMemoryStore) DeleteRule(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, code)
	return nil
}

func (s *InMemoryStore) ReplaceAll(_ context.Context, rules []risk.Rule) error {
	next := make(map[string]risk.Rule, len(rules))
	for _, r := range rules {
		r = r.Normalize()
		next[r.Code] = r
	}
	s.mu.Lock()
	s.rules = next
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules), nil
}
