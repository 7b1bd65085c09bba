// Package ruletable holds the in-memory index of classification rules the
// risk engine reads, its load lifecycle, and the administrative write path.
package ruletable

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sentinel"
)

// State is the load lifecycle of the table.
//
//	uninitialized -> loading -> ready | failed
//	failed | ready -> loading (reload)
//
// A table that is reloading keeps serving the previous index.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Source supplies the authoritative rule set.
type Source interface {
	LoadRules(ctx context.Context) ([]risk.Rule, error)
}

// Store persists administrative rule changes.
type Store interface {
	UpsertRule(ctx context.Context, rule risk.Rule) error
	DeleteRule(ctx context.Context, code string) error
}

// Status is a point-in-time view of the table for health and admin endpoints.
type Status struct {
	State     State     `json:"state"`
	Count     int       `json:"count"`
	LoadedAt  time.Time `json:"loaded_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Table indexes rules by normalized code. Lookups take a read lock;
// loads and administrative writes take the write lock.
type Table struct {
	source Source
	store  Store
	logger *slog.Logger

	mu       sync.RWMutex
	index    map[string]risk.Rule
	state    State
	settled  chan struct{}
	loadedAt time.Time
	lastErr  error

	// writeMu serializes store write + index update pairs so the index
	// applies admin writes in the order the store accepted them.
	writeMu sync.Mutex
}

// Option configures a Table.
type Option func(*Table)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithStore sets the backing store for administrative writes.
// Without a store, writes only change the in-memory index.
func WithStore(store Store) Option {
	return func(t *Table) {
		t.store = store
	}
}

// New constructs an uninitialized table. Call Load before serving traffic.
func New(source Source, opts ...Option) *Table {
	t := &Table{
		source:  source,
		index:   make(map[string]risk.Rule),
		state:   StateUninitialized,
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load replaces the index with the source's rules. Duplicate codes are
// last-write-wins and rules whose code normalizes to empty are dropped.
// On failure the previous index is kept and the state becomes failed.
// Admin writes wait for the load: the source read and the index swap happen
// under writeMu so a write cannot land between them and be lost.
func (t *Table) Load(ctx context.Context) error {
	t.mu.Lock()
	if t.state == StateLoading {
		t.mu.Unlock()
		return fmt.Errorf("rule table load already in progress")
	}
	t.state = StateLoading
	t.mu.Unlock()

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	var rules []risk.Rule
	var err error
	if t.source == nil {
		err = fmt.Errorf("no rule source configured")
	} else {
		rules, err = t.source.LoadRules(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.settle()

	if err != nil {
		t.state = StateFailed
		t.lastErr = err
		if t.logger != nil {
			t.logger.ErrorContext(ctx, "rule table load failed", "error", err)
		}
		return fmt.Errorf("load rules: %w", err)
	}

	index := make(map[string]risk.Rule, len(rules))
	dropped := 0
	for _, r := range rules {
		r = r.Normalize()
		if r.Code == "" {
			dropped++
			continue
		}
		index[r.Code] = r
	}
	t.index = index
	t.state = StateReady
	t.lastErr = nil
	t.loadedAt = time.Now()
	if t.logger != nil {
		t.logger.InfoContext(ctx, "rule table loaded",
			"rules", len(index),
			"dropped", dropped,
		)
	}
	return nil
}

// settle wakes WaitReady callers; must hold mu.
func (t *Table) settle() {
	close(t.settled)
	t.settled = make(chan struct{})
}

// WaitReady blocks until the table is ready or failed, or ctx is done.
// It returns the state observed when it stopped waiting.
func (t *Table) WaitReady(ctx context.Context) (State, error) {
	t.mu.RLock()
	state, settled := t.state, t.settled
	t.mu.RUnlock()
	if state == StateReady || state == StateFailed {
		return state, nil
	}

	select {
	case <-settled:
		return t.State(), nil
	case <-ctx.Done():
		return t.State(), ctx.Err()
	}
}

// Lookup implements risk.RuleLookup. The returned rule is a copy.
func (t *Table) Lookup(code string) (risk.Rule, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.index[risk.NormalizeCode(code)]
	return r, ok
}

// Get returns the rule for code or sentinel.ErrNotFound.
func (t *Table) Get(code string) (risk.Rule, error) {
	r, ok := t.Lookup(code)
	if !ok {
		return risk.Rule{}, fmt.Errorf("rule %q: %w", risk.NormalizeCode(code), sentinel.ErrNotFound)
	}
	return r, nil
}

// List returns every rule ordered by code.
func (t *Table) List() []risk.Rule {
	t.mu.RLock()
	rules := make([]risk.Rule, 0, len(t.index))
	for _, r := range t.index {
		rules = append(rules, r)
	}
	t.mu.RUnlock()

	sort.Slice(rules, func(i, j int) bool { return rules[i].Code < rules[j].Code })
	return rules
}

func (t *Table) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Table) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Status{State: t.state, Count: len(t.index), LoadedAt: t.loadedAt}
	if t.lastErr != nil {
		s.LastError = t.lastErr.Error()
	}
	return s
}
