//go:build integration

package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process/store"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/testutil/containers"
)

type PostgresProcessStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.SQLStore
}

func TestPostgresProcessStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresProcessStoreSuite))
}

func (s *PostgresProcessStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewSQLStore(s.postgres.DB, sqldb.Postgres)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresProcessStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "processes"))
}

func (s *PostgresProcessStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	p := &process.Process{
		ID:        domain.EntityID("11222333000181"),
		Company:   &registry.Company{CNPJ: "11222333000181", LegalName: "Farmácia Boa Saúde"},
		Analysis:  process.PlaceholderAnalysis(),
		UpdatedAt: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	s.Require().NoError(s.store.Save(ctx, p))
	got, err := s.store.Get(ctx, p.ID)

	s.Require().NoError(err)
	s.Equal(p, got)
}

// TestConcurrentSaves verifies distinct records never clobber each other.
func (s *PostgresProcessStoreSuite) TestConcurrentSaves() {
	ctx := context.Background()
	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := domain.EntityID(fmt.Sprintf("112223330%05d", i+1))
			errs <- s.store.Save(ctx, &process.Process{
				ID:        id,
				Analysis:  process.PlaceholderAnalysis(),
				UpdatedAt: time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(workers, n)
}
