package usage

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteSink appends usage events to a local database so totals survive
// restarts. Optional; the gateway keeps no state when unconfigured.
type SQLiteSink struct {
	db *sql.DB
}

const usageSchema = `
CREATE TABLE IF NOT EXISTS usage_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	streaming INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cached_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	total_cost_micro_usd INTEGER
);
CREATE INDEX IF NOT EXISTS idx_usage_events_provider ON usage_events(provider);
CREATE INDEX IF NOT EXISTS idx_usage_events_timestamp ON usage_events(timestamp);
`

// NewSQLiteSink opens (or creates) the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open usage database: %w", err)
	}
	if _, err := db.Exec(usageSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create usage schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Consume implements Sink. Insert failures are logged, never surfaced.
func (s *SQLiteSink) Consume(ev Event) {
	var cost any
	if ev.Cost != nil {
		cost = int64(ev.Cost.Total)
	}

	_, err := s.db.Exec(
		`INSERT INTO usage_events
		 (request_id, provider, model, streaming, timestamp,
		  input_tokens, output_tokens, cached_tokens, total_tokens, total_cost_micro_usd)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RequestID, ev.Provider, ev.Model, ev.Streaming,
		ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		ev.Tokens.Input, ev.Tokens.Output, ev.Tokens.Cached, ev.Tokens.Total, cost,
	)
	if err != nil {
		log.Warn().Err(err).Msg("usage sqlite sink insert failed")
	}
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
