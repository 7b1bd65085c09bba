package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sentinel"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
)

// SQLiteStoreSuite runs the process store against an embedded SQLite file.
type SQLiteStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *SQLStore
	ctx   context.Context
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sql.Open("sqlite", filepath.Join(s.T().TempDir(), "processes.db"))
	s.Require().NoError(err)
	s.db = db
	s.store = NewSQLStore(db, sqldb.SQLite)
	s.Require().NoError(s.store.Migrate(s.ctx))
}

func (s *SQLiteStoreSuite) TearDownTest() {
	_ = s.db.Close()
}

func (s *SQLiteStoreSuite) TestSaveOverwrites() {
	p := sampleProcess("11222333000181", baseTime)
	s.Require().NoError(s.store.Save(s.ctx, p))

	p.Notes = "licença emitida"
	p.UpdatedAt = baseTime.Add(time.Minute)
	s.Require().NoError(s.store.Save(s.ctx, p))

	got, err := s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("licença emitida", got.Notes)
	s.True(got.UpdatedAt.Equal(p.UpdatedAt))

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *SQLiteStoreSuite) TestListNewestFirst() {
	s.Require().NoError(s.store.Save(s.ctx, sampleProcess("11222333000181", baseTime)))
	s.Require().NoError(s.store.Save(s.ctx, sampleProcess("44555666000199", baseTime.Add(time.Hour))))

	list, err := s.store.List(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("44555666000199", list[0].ID.String())
}

func (s *SQLiteStoreSuite) TestDeleteInTransactionRollsBack() {
	p := sampleProcess("11222333000181", baseTime)
	s.Require().NoError(s.store.Save(s.ctx, p))

	err := sqldb.WithTx(s.ctx, s.db, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, p.ID); err != nil {
			return err
		}
		return sentinel.ErrConflict
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.Get(s.ctx, p.ID)
	s.NoError(err)
}

func (s *SQLiteStoreSuite) TestLegacyRecordRoundTrip() {
	p, ok := process.FromLegacy(process.LegacyRow{Document: "12.345.678/0001-95", LegalName: "Mercado Central"}, baseTime)
	s.Require().True(ok)
	s.Require().NoError(s.store.Save(s.ctx, p))

	got, err := s.store.Get(s.ctx, p.ID)

	s.Require().NoError(err)
	s.True(got.IsLegacy)
	s.Equal(process.LicensePending, got.License.Status)
	s.True(got.Analysis.IsPending())
}
