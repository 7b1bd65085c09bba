package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/config"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	processstore "github.com/Rafadormi/105-dirvigisan-perobal/internal/process/store"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	rulestore "github.com/Rafadormi/105-dirvigisan-perobal/internal/risk/store"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	auditmemory "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/store/memory"
	auditsql "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/store/sqlstore"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/tx"
)

// ruleBackend is the rule store as seen by startup: a rule source for the
// table, a sink for admin writes and a seedable catalogue.
type ruleBackend interface {
	LoadRules(ctx context.Context) ([]risk.Rule, error)
	UpsertRule(ctx context.Context, rule risk.Rule) error
	DeleteRule(ctx context.Context, code string) error
	ReplaceAll(ctx context.Context, rules []risk.Rule) error
	Count(ctx context.Context) (int, error)
}

type backends struct {
	db        *sql.DB
	rules     ruleBackend
	processes process.Store
	audit     audit.Store
	tx        tx.Runner
}

func (b *backends) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// openBackends selects the memory or SQL stores and runs migrations.
func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	if !cfg.UsesSQL() {
		logger.InfoContext(ctx, "using in-memory stores")
		return &backends{
			rules:     rulestore.NewInMemoryStore(),
			processes: processstore.NewInMemoryStore(),
			audit:     auditmemory.NewInMemoryStore(),
			tx:        tx.NewShardedLocker(cfg.Store.TxTimeout),
		}, nil
	}

	dialect, err := sqldb.ParseDialect(cfg.Store.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sqldb.Open(ctx, dialect, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	rules := rulestore.NewSQLStore(db, dialect)
	processes := processstore.NewSQLStore(db, dialect)
	events := auditsql.New(db, dialect)
	migrations := []struct {
		name string
		run  func(context.Context) error
	}{
		{"cnae_rules", rules.Migrate},
		{"processes", processes.Migrate},
		{"audit_events", events.Migrate},
	}
	for _, m := range migrations {
		if err := m.run(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	logger.InfoContext(ctx, "database ready", "driver", string(dialect))

	return &backends{
		db:        db,
		rules:     rules,
		processes: processes,
		audit:     events,
		tx:        sqldb.NewTransactor(db, cfg.Store.TxTimeout),
	}, nil
}

// seedRules copies the YAML catalogue into an empty rule store. A store that
// already holds rules is authoritative and left alone.
func seedRules(ctx context.Context, rules ruleBackend, path string, logger *slog.Logger) error {
	n, err := rules.Count(ctx)
	if err != nil {
		return fmt.Errorf("count rules: %w", err)
	}
	if n > 0 {
		logger.InfoContext(ctx, "rule store already seeded", "count", n)
		return nil
	}
	seed, err := rulestore.NewYAMLSource(path).LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("read rule seed: %w", err)
	}
	if err := rules.ReplaceAll(ctx, seed); err != nil {
		return fmt.Errorf("seed rules: %w", err)
	}
	logger.InfoContext(ctx, "rule store seeded", "path", path, "count", len(seed))
	return nil
}
