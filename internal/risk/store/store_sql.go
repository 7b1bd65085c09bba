package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/requestcontext"
)

const schema = `CREATE TABLE IF NOT EXISTS cnae_rules (
	code         TEXT PRIMARY KEY,
	description  TEXT NOT NULL DEFAULT '',
	risk         TEXT NOT NULL,
	competence   TEXT NOT NULL,
	requires_pba BOOLEAN NOT NULL DEFAULT FALSE,
	question     TEXT NOT NULL DEFAULT '',
	risk_if_yes  TEXT NOT NULL DEFAULT '',
	risk_if_no   TEXT NOT NULL DEFAULT '',
	updated_at   TIMESTAMP NOT NULL
)`

const (
	selectRulesSQL = `SELECT code, description, risk, competence, requires_pba, question, risk_if_yes, risk_if_no
FROM cnae_rules ORDER BY code`

	upsertRuleSQL = `INSERT INTO cnae_rules (code, description, risk, competence, requires_pba, question, risk_if_yes, risk_if_no, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (code) DO UPDATE SET
	description = excluded.description,
	risk = excluded.risk,
	competence = excluded.competence,
	requires_pba = excluded.requires_pba,
	question = excluded.question,
	risk_if_yes = excluded.risk_if_yes,
	risk_if_no = excluded.risk_if_no,
	updated_at = excluded.updated_at`

	deleteRuleSQL = `DELETE FROM cnae_rules WHERE code = ?`
	deleteAllSQL  = `DELETE FROM cnae_rules`
	countRulesSQL = `SELECT COUNT(*) FROM cnae_rules`
)

// SQLStore persists rules in PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewSQLStore(db *sql.DB, dialect sqldb.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the rules table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate cnae_rules: %w", err)
	}
	return nil
}

func (s *SQLStore) LoadRules(ctx context.Context) ([]risk.Rule, error) {
	rows, err := sqldb.Executor(ctx, s.db).QueryContext(ctx, selectRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	defer rows.Close()

	var rules []risk.Rule
	for rows.Next() {
		var r risk.Rule
		var tier, competence, ifYes, ifNo string
		if err := rows.Scan(&r.Code, &r.Description, &tier, &competence, &r.RequiresPba, &r.Question, &ifYes, &ifNo); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.Risk = risk.RiskLevel(tier)
		r.Competence = risk.Competence(competence)
		r.RiskIfYes = risk.RiskLevel(ifYes)
		r.RiskIfNo = risk.RiskLevel(ifNo)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func (s *SQLStore) UpsertRule(ctx context.Context, rule risk.Rule) error {
	_, err := sqldb.Executor(ctx, s.db).ExecContext(ctx, s.dialect.Rebind(upsertRuleSQL),
		rule.Code,
		rule.Description,
		string(rule.Risk),
		string(rule.Competence),
		rule.RequiresPba,
		rule.Question,
		string(rule.RiskIfYes),
		string(rule.RiskIfNo),
		requestcontext.Now(ctx).UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert rule %s: %w", rule.Code, err)
	}
	return nil
}

func (s *SQLStore) DeleteRule(ctx context.Context, code string) error {
	if _, err := sqldb.Executor(ctx, s.db).ExecContext(ctx, s.dialect.Rebind(deleteRuleSQL), code); err != nil {
		return fmt.Errorf("delete rule %s: %w", code, err)
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqldb.Executor(ctx, s.db).QueryRowContext(ctx, countRulesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the whole catalogue in one transaction. If ctx already
// carries a transaction the statements join it and the caller commits.
func (s *SQLStore) ReplaceAll(ctx context.Context, rules []risk.Rule) error {
	return sqldb.WithTx(ctx, s.db, func(ctx context.Context) error {
		return s.replaceAll(ctx, rules)
	})
}

func (s *SQLStore) replaceAll(ctx context.Context, rules []risk.Rule) error {
	if _, err := sqldb.Executor(ctx, s.db).ExecContext(ctx, deleteAllSQL); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	for _, r := range rules {
		r = r.Normalize()
		if r.Code == "" {
			continue
		}
		if err := s.UpsertRule(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
