// Package sqlstore persists audit events in the relational database shared with
// the rule and process stores (PostgreSQL or SQLite).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/sqldb"
)

const schema = `CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	category    TEXT NOT NULL,
	occurred_at TIMESTAMP NOT NULL,
	subject     TEXT NOT NULL,
	action      TEXT NOT NULL,
	decision    TEXT NOT NULL DEFAULT '',
	previous    TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	actor_id    TEXT NOT NULL DEFAULT ''
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject, occurred_at)`

const selectColumns = `SELECT id, category, occurred_at, subject, action, decision, previous, reason, request_id, actor_id FROM audit_events`

// Store implements audit.Store and audit.Reader. Appends join the transaction
// carried by ctx so an audit row commits or rolls back with the change it
// describes.
type Store struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func New(db *sql.DB, dialect sqldb.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schema, indexSchema} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate audit_events: %w", err)
		}
	}
	return nil
}

// Append inserts the event. Duplicate ids are ignored so replays are idempotent.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	query := s.dialect.Rebind(`INSERT INTO audit_events
	(id, category, occurred_at, subject, action, decision, previous, reason, request_id, actor_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`)
	_, err := sqldb.Executor(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp.UTC(),
		event.Subject,
		event.Action,
		event.Decision,
		event.Previous,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns the subject's events oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := sqldb.Executor(ctx, s.db).QueryContext(ctx,
		s.dialect.Rebind(selectColumns+` WHERE subject = ? ORDER BY occurred_at, id`), subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := sqldb.Executor(ctx, s.db).QueryContext(ctx,
		s.dialect.Rebind(selectColumns+` ORDER BY occurred_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Previous,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
