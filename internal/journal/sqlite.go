package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal creates a new SQLite-backed journal.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		strategy_id TEXT NOT NULL,
		strategy_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		order_id TEXT,
		message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_executions_ts ON executions(ts);
	CREATE INDEX IF NOT EXISTS idx_executions_strategy ON executions(strategy_id);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends one entry.
func (j *SQLiteJournal) Record(ctx context.Context, entry Entry) error {
	ts := entry.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO executions (ts, strategy_id, strategy_name, kind, order_id, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ts, entry.StrategyID, entry.StrategyName, entry.Kind, entry.OrderID, entry.Message)
	if err != nil {
		return fmt.Errorf("recording journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, strategy_id, strategy_name, kind, COALESCE(order_id, ''), COALESCE(message, '')
		 FROM executions ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Time, &e.StrategyID, &e.StrategyName, &e.Kind, &e.OrderID, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
