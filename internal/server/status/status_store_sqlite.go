package status

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS status_checks (
	id TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
`

type sqliteStatusRow struct {
	ID         string `db:"id"`
	ClientName string `db:"client_name"`
	Timestamp  string `db:"timestamp"`
}

// SQLiteStore keeps status checks in a local SQLite table.
// Rows are returned in insertion (rowid) order; the rowid is never exposed.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create status_checks table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, sc *StatusCheck) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		sc.ID, sc.ClientName, FormatTimestamp(sc.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindRecent(ctx context.Context, limit int) ([]*StatusCheck, error) {
	var rows []sqliteStatusRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, client_name, timestamp FROM status_checks ORDER BY rowid LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select status checks: %w", err)
	}

	checks := make([]*StatusCheck, 0, len(rows))
	for _, row := range rows {
		ts, err := ParseTimestamp(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("status check %s: %w", row.ID, err)
		}
		checks = append(checks, &StatusCheck{
			ID:         row.ID,
			ClientName: row.ClientName,
			Timestamp:  ts,
		})
	}
	return checks, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
