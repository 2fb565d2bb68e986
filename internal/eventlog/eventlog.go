// Package eventlog records LLM request events in a local SQLite
// database so usage and failures can be inspected after the fact.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Event is one recorded LLM API call.
type Event struct {
	ID           int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// Repo provides append and query access to LLM request events.
type Repo interface {
	// Append records one event. Best-effort from the caller's side:
	// callers log and continue on failure.
	Append(ctx context.Context, ev Event) error

	// Recent returns the most recent events, newest first.
	// limit <= 0 means a default of 50.
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// SQLiteRepo implements Repo on a local SQLite file.
type SQLiteRepo struct {
	db *sql.DB
}

// Open creates (or opens) the event log database at path and ensures
// the schema exists.
func Open(path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}

	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize event log schema: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_llm_events_timestamp ON llm_request_events(timestamp);
	`
	_, err := db.Exec(query)
	return err
}

// Close closes the underlying database.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) Append(ctx context.Context, ev Event) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_request_events
			(timestamp, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UnixMilli(), ev.Provider, ev.Model, ev.Purpose,
		ev.InputTokens, ev.OutputTokens, ev.LatencyMs,
		boolToInt(ev.Success), ev.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append LLM request event: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, provider, model, purpose,
		       input_tokens, output_tokens, latency_ms, success, error_message
		FROM llm_request_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var ts int64
		var success int
		if err := rows.Scan(&ev.ID, &ts, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &success, &ev.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ts)
		ev.Success = success != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nopRepo discards events. Used when no event log is available.
type nopRepo struct{}

// Nop returns a Repo that drops every event.
func Nop() Repo { return nopRepo{} }

func (nopRepo) Append(context.Context, Event) error { return nil }

func (nopRepo) Recent(context.Context, int) ([]Event, error) { return nil, nil }
