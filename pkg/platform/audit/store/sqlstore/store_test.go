package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/tx"
)

type SQLiteAuditStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *Store
}

func TestSQLiteAuditStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteAuditStoreSuite))
}

func (s *SQLiteAuditStoreSuite) SetupTest() {
	db, err := sqldb.Open(context.Background(), sqldb.SQLite, filepath.Join(s.T().TempDir(), "audit.db"))
	s.Require().NoError(err)
	s.db = db
	s.store = New(db, sqldb.SQLite)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *SQLiteAuditStoreSuite) TearDownTest() {
	_ = s.db.Close()
}

func (s *SQLiteAuditStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Append(ctx, audit.Event{Subject: "11222333000181", Action: string(audit.EventRiskOverridden), Decision: "BAIXO", Previous: "ALTO", ActorID: "fiscal.ana", Timestamp: base}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Subject: "5611201", Action: string(audit.EventRuleUpserted), Timestamp: base.Add(time.Minute)}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Subject: "11222333000181", Action: string(audit.EventProcessSaved), Timestamp: base.Add(2 * time.Minute)}))

	events, err := s.store.ListBySubject(ctx, "11222333000181")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventRiskOverridden), events[0].Action)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal("ALTO", events[0].Previous)
	s.NotEmpty(events[0].ID)

	recent, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(string(audit.EventProcessSaved), recent[0].Action)
}

func (s *SQLiteAuditStoreSuite) TestDuplicateIDIsIgnored() {
	ctx := context.Background()
	e := audit.Event{ID: "fixed", Subject: "x", Action: "a"}

	s.Require().NoError(s.store.Append(ctx, e))
	s.Require().NoError(s.store.Append(ctx, e))

	events, _ := s.store.ListBySubject(ctx, "x")
	s.Len(events, 1)
}

func (s *SQLiteAuditStoreSuite) TestAppendJoinsTransaction() {
	ctx := context.Background()
	t, err := s.db.BeginTx(ctx, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Append(tx.WithTx(ctx, t), audit.Event{Subject: "rolled", Action: "a"}))
	s.Require().NoError(t.Rollback())

	events, _ := s.store.ListBySubject(ctx, "rolled")
	s.Empty(events)
}
