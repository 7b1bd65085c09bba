package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rafadormi/105-dirvigisan-perobal/internal/process"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sentinel"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
)

// The record is stored as one JSON document; only the key and the sort
// column are broken out.
const schema = `CREATE TABLE IF NOT EXISTS processes (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

const (
	upsertProcessSQL = `INSERT INTO processes (id, document, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	document = excluded.document,
	updated_at = excluded.updated_at`

	selectProcessSQL  = `SELECT document FROM processes WHERE id = ?`
	listProcessesSQL  = `SELECT document FROM processes ORDER BY updated_at DESC, id`
	deleteProcessSQL  = `DELETE FROM processes WHERE id = ?`
	countProcessesSQL = `SELECT COUNT(*) FROM processes`
)

// SQLStore persists processes in PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewSQLStore(db *sql.DB, dialect sqldb.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the processes table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate processes: %w", err)
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, p *process.Process) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode process %s: %w", p.ID, err)
	}
	_, err = sqldb.Executor(ctx, s.db).ExecContext(ctx, s.dialect.Rebind(upsertProcessSQL),
		p.ID.String(), string(doc), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save process %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id domain.EntityID) (*process.Process, error) {
	var doc string
	err := sqldb.Executor(ctx, s.db).QueryRowContext(ctx, s.dialect.Rebind(selectProcessSQL), id.String()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("process %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get process %s: %w", id, err)
	}
	return decode(doc)
}

func (s *SQLStore) List(ctx context.Context) ([]*process.Process, error) {
	rows, err := sqldb.Executor(ctx, s.db).QueryContext(ctx, listProcessesSQL)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	var out []*process.Process
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		p, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processes: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, id domain.EntityID) error {
	res, err := sqldb.Executor(ctx, s.db).ExecContext(ctx, s.dialect.Rebind(deleteProcessSQL), id.String())
	if err != nil {
		return fmt.Errorf("delete process %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete process %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("process %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqldb.Executor(ctx, s.db).QueryRowContext(ctx, countProcessesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count processes: %w", err)
	}
	return n, nil
}

func decode(doc string) (*process.Process, error) {
	var p process.Process
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode process: %w", err)
	}
	return &p, nil
}
