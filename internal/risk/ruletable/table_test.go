package ruletable

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	dErrors "github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain-errors"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sentinel"
)

type fakeSource struct {
	rules []risk.Rule
	err   error
	gate  chan struct{}
}

func (f *fakeSource) LoadRules(ctx context.Context) ([]risk.Rule, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.rules, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	err     error
	upserts []risk.Rule
	deletes []string
}

func (f *fakeStore) UpsertRule(_ context.Context, rule risk.Rule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, rule)
	return nil
}

func (f *fakeStore) DeleteRule(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, code)
	return nil
}

func seedRules() []risk.Rule {
	return []risk.Rule{
		{Code: "56.11-2/01", Description: "Restaurantes", Risk: risk.RiskMedium},
		{Code: "4771-7/00", Description: "Farmácias", Risk: risk.RiskLow, Competence: risk.CompetenceMunicipal},
		{Code: "8610101", Description: "Hospital", Risk: risk.RiskConditional, Competence: risk.CompetenceState, RequiresPba: true},
	}
}

type TableSuite struct {
	suite.Suite
	ctx context.Context
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableSuite))
}

func (s *TableSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *TableSuite) TestLoad() {
	s.Run("new table is uninitialized and empty", func() {
		table := New(&fakeSource{rules: seedRules()})

		s.Equal(StateUninitialized, table.State())
		s.Zero(table.Status().Count)
		_, ok := table.Lookup("5611201")
		s.False(ok)
	})

	s.Run("successful load indexes by normalized code", func() {
		table := New(&fakeSource{rules: seedRules()})

		s.Require().NoError(table.Load(s.ctx))

		s.Equal(StateReady, table.State())
		s.Equal(3, table.Status().Count)
		rule, ok := table.Lookup("5611201")
		s.Require().True(ok)
		s.Equal(risk.RiskMedium, rule.Risk)
		s.Equal(risk.CompetenceMunicipal, rule.Competence, "empty competence defaults to municipal")

		_, ok = table.Lookup("56.11-2/01")
		s.True(ok, "lookup normalizes its argument")
	})

	s.Run("duplicate codes are last write wins", func() {
		rules := []risk.Rule{
			{Code: "5611201", Risk: risk.RiskLow},
			{Code: "5611-2/01", Risk: risk.RiskHigh},
		}
		table := New(&fakeSource{rules: rules})

		s.Require().NoError(table.Load(s.ctx))

		rule, ok := table.Lookup("5611201")
		s.Require().True(ok)
		s.Equal(risk.RiskHigh, rule.Risk)
		s.Equal(1, table.Status().Count)
	})

	s.Run("rules without digits are dropped", func() {
		rules := []risk.Rule{{Code: "n/a", Risk: risk.RiskLow}, {Code: "4771700", Risk: risk.RiskLow}}
		table := New(&fakeSource{rules: rules})

		s.Require().NoError(table.Load(s.ctx))
		s.Equal(1, table.Status().Count)
	})

	s.Run("failed load reports failed state and error", func() {
		table := New(&fakeSource{err: errors.New("connection refused")})

		err := table.Load(s.ctx)

		s.Require().Error(err)
		s.ErrorContains(err, "connection refused")
		s.Equal(StateFailed, table.State())
		s.Equal("connection refused", table.Status().LastError)
	})

	s.Run("failed reload keeps the previous index", func() {
		source := &fakeSource{rules: seedRules()}
		table := New(source)
		s.Require().NoError(table.Load(s.ctx))

		source.err = errors.New("timeout")
		s.Require().Error(table.Load(s.ctx))

		s.Equal(StateFailed, table.State())
		s.Equal(3, table.Status().Count)
	})

	s.Run("missing source fails the load", func() {
		table := New(nil)

		s.Require().Error(table.Load(s.ctx))
		s.Equal(StateFailed, table.State())
	})
}

func (s *TableSuite) TestWaitReady() {
	s.Run("returns immediately when ready", func() {
		table := New(&fakeSource{rules: seedRules()})
		s.Require().NoError(table.Load(s.ctx))

		state, err := table.WaitReady(s.ctx)

		s.Require().NoError(err)
		s.Equal(StateReady, state)
	})

	s.Run("unblocks when an in-flight load completes", func() {
		source := &fakeSource{rules: seedRules(), gate: make(chan struct{})}
		table := New(source)

		loaded := make(chan error, 1)
		go func() { loaded <- table.Load(s.ctx) }()

		waited := make(chan State, 1)
		go func() {
			state, _ := table.WaitReady(s.ctx)
			waited <- state
		}()

		close(source.gate)
		s.Require().NoError(<-loaded)

		select {
		case state := <-waited:
			s.Equal(StateReady, state)
		case <-time.After(2 * time.Second):
			s.Fail("WaitReady did not return after load completed")
		}
	})

	s.Run("gives up when the context expires", func() {
		table := New(&fakeSource{rules: seedRules()})
		ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
		defer cancel()

		state, err := table.WaitReady(ctx)

		s.ErrorIs(err, context.DeadlineExceeded)
		s.Equal(StateUninitialized, state)
	})

	s.Run("returns failed state without waiting", func() {
		table := New(&fakeSource{err: errors.New("boom")})
		_ = table.Load(s.ctx)

		state, err := table.WaitReady(s.ctx)

		s.Require().NoError(err)
		s.Equal(StateFailed, state)
	})
}

func (s *TableSuite) TestList() {
	table := New(&fakeSource{rules: seedRules()})
	s.Require().NoError(table.Load(s.ctx))

	rules := table.List()

	s.Require().Len(rules, 3)
	s.Equal("4771700", rules[0].Code)
	s.Equal("5611201", rules[1].Code)
	s.Equal("8610101", rules[2].Code)
}

func (s *TableSuite) TestGet() {
	table := New(&fakeSource{rules: seedRules()})
	s.Require().NoError(table.Load(s.ctx))

	rule, err := table.Get("4771-7/00")
	s.Require().NoError(err)
	s.Equal("Farmácias", rule.Description)

	_, err = table.Get("1234567")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *TableSuite) TestUpsert() {
	s.Run("writes the store first then indexes", func() {
		store := &fakeStore{}
		table := New(&fakeSource{rules: seedRules()}, WithStore(store))
		s.Require().NoError(table.Load(s.ctx))

		saved, err := table.Upsert(s.ctx, risk.Rule{Code: "2121-1/01", Risk: risk.RiskHigh, Competence: risk.CompetenceState})

		s.Require().NoError(err)
		s.Equal("2121101", saved.Code)
		s.Require().Len(store.upserts, 1)
		s.Equal("2121101", store.upserts[0].Code)
		rule, ok := table.Lookup("2121101")
		s.Require().True(ok)
		s.Equal(risk.RiskHigh, rule.Risk)
	})

	s.Run("replaces an existing rule", func() {
		table := New(&fakeSource{rules: seedRules()})
		s.Require().NoError(table.Load(s.ctx))

		_, err := table.Upsert(s.ctx, risk.Rule{Code: "5611201", Risk: risk.RiskHigh})

		s.Require().NoError(err)
		rule, _ := table.Lookup("5611201")
		s.Equal(risk.RiskHigh, rule.Risk)
		s.Equal(3, table.Status().Count)
	})

	s.Run("store failure leaves the index untouched", func() {
		store := &fakeStore{err: errors.New("disk full")}
		table := New(&fakeSource{rules: seedRules()}, WithStore(store))
		s.Require().NoError(table.Load(s.ctx))

		_, err := table.Upsert(s.ctx, risk.Rule{Code: "5611201", Risk: risk.RiskHigh})

		s.Require().Error(err)
		s.ErrorContains(err, "disk full")
		rule, _ := table.Lookup("5611201")
		s.Equal(risk.RiskMedium, rule.Risk)
	})

	s.Run("invalid rule is rejected before the store", func() {
		store := &fakeStore{}
		table := New(&fakeSource{rules: seedRules()}, WithStore(store))

		_, err := table.Upsert(s.ctx, risk.Rule{Code: "5611201", Risk: risk.RiskPending})

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Empty(store.upserts)
	})

	s.Run("code without digits is rejected", func() {
		table := New(&fakeSource{})

		_, err := table.Upsert(s.ctx, risk.Rule{Code: "abc", Risk: risk.RiskLow})

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *TableSuite) TestDelete() {
	s.Run("removes the rule and reports it existed", func() {
		store := &fakeStore{}
		table := New(&fakeSource{rules: seedRules()}, WithStore(store))
		s.Require().NoError(table.Load(s.ctx))

		removed, err := table.Delete(s.ctx, "5611-2/01")

		s.Require().NoError(err)
		s.True(removed)
		s.Equal([]string{"5611201"}, store.deletes)
		_, ok := table.Lookup("5611201")
		s.False(ok)
	})

	s.Run("absent code is a no-op", func() {
		table := New(&fakeSource{rules: seedRules()})
		s.Require().NoError(table.Load(s.ctx))

		removed, err := table.Delete(s.ctx, "1111111")

		s.Require().NoError(err)
		s.False(removed)
		s.Equal(3, table.Status().Count)
	})

	s.Run("store failure keeps the rule", func() {
		store := &fakeStore{err: errors.New("locked")}
		table := New(&fakeSource{rules: seedRules()}, WithStore(store))
		s.Require().NoError(table.Load(s.ctx))

		_, err := table.Delete(s.ctx, "5611201")

		s.Require().Error(err)
		_, ok := table.Lookup("5611201")
		s.True(ok)
	})
}

// TestConcurrentReadsDuringWrites exercises the locking under -race.
func (s *TableSuite) TestConcurrentReadsDuringWrites() {
	table := New(&fakeSource{rules: seedRules()})
	s.Require().NoError(table.Load(s.ctx))
	engine := risk.NewEngine(table)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				result := engine.Analyze([]string{"5611201", "4771700"}, nil)
				s.True(result.RiskLevel.IsAssignable())
			}
		}()
	}
	for i := 0; i < 50; i++ {
		tier := risk.RiskLow
		if i%2 == 0 {
			tier = risk.RiskHigh
		}
		_, err := table.Upsert(s.ctx, risk.Rule{Code: "5611201", Risk: tier})
		s.Require().NoError(err)
	}
	wg.Wait()
}

// catalogue is one backend serving as both source and store, as the server
// wires it. The first LoadRules signals after copying its snapshot and then
// waits for release.
type catalogue struct {
	mu          sync.Mutex
	rules       map[string]risk.Rule
	snapshotted chan struct{}
	release     chan struct{}
}

func newCatalogue(rules ...risk.Rule) *catalogue {
	c := &catalogue{
		rules:       make(map[string]risk.Rule),
		snapshotted: make(chan struct{}),
		release:     make(chan struct{}),
	}
	for _, r := range rules {
		r = r.Normalize()
		c.rules[r.Code] = r
	}
	return c
}

func (c *catalogue) LoadRules(ctx context.Context) ([]risk.Rule, error) {
	c.mu.Lock()
	out := make([]risk.Rule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	c.mu.Unlock()

	if c.snapshotted != nil {
		close(c.snapshotted)
		c.snapshotted = nil
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

func (c *catalogue) UpsertRule(_ context.Context, rule risk.Rule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[rule.Code] = rule
	return nil
}

func (c *catalogue) DeleteRule(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rules, code)
	return nil
}

func (c *catalogue) has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rules[code]
	return ok
}

func (s *TableSuite) TestWritesDuringReloadAreNotLost() {
	backend := newCatalogue(seedRules()...)
	snapshotted := backend.snapshotted
	table := New(backend, WithStore(backend))

	loaded := make(chan error, 1)
	go func() { loaded <- table.Load(s.ctx) }()
	<-snapshotted

	written := make(chan error, 2)
	go func() {
		_, err := table.Upsert(s.ctx, risk.Rule{Code: "4711-3/02", Description: "Supermercados", Risk: risk.RiskMedium})
		written <- err
	}()
	go func() {
		_, err := table.Delete(s.ctx, "56.11-2/01")
		written <- err
	}()

	select {
	case err := <-written:
		s.Failf("admin write finished during a load", "err=%v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(backend.release)
	s.Require().NoError(<-loaded)
	s.Require().NoError(<-written)
	s.Require().NoError(<-written)

	s.True(backend.has("4711302"))
	_, ok := table.Lookup("4711302")
	s.True(ok, "upserted rule must stay indexed after the reload")

	s.False(backend.has("5611201"))
	_, ok = table.Lookup("5611201")
	s.False(ok, "deleted rule must not come back with the reload snapshot")
	s.Equal(StateReady, table.State())
}
