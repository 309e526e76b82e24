// Package history mirrors completed translations to PostgreSQL so they
// outlive the in-memory session.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nadzzz/polyglot/internal/session"
)

// Schema is the SQL DDL for the translations table. Execute it via
// [PostgresSink.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS translations (
    id            BIGSERIAL PRIMARY KEY,
    session_id    TEXT NOT NULL,
    translated_at TIMESTAMPTZ NOT NULL,
    source_text   TEXT NOT NULL,
    translation   TEXT NOT NULL,
    source_code   TEXT NOT NULL,
    target_code   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_translations_session ON translations(session_id, translated_at);
`

// DB is the database interface used by [PostgresSink]. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink writes translation records to the translations table.
type PostgresSink struct {
	db DB
}

// NewPostgresSink creates a sink on db. Call [PostgresSink.Migrate] before
// the first Record.
func NewPostgresSink(db DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Open connects a pool to dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	return pool, nil
}

// Migrate executes the [Schema] DDL.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Record inserts one translation.
func (s *PostgresSink) Record(ctx context.Context, sessionID string, rec session.Record) error {
	const query = `
		INSERT INTO translations (
			session_id, translated_at, source_text, translation, source_code, target_code
		) VALUES ($1,$2,$3,$4,$5,$6)`

	tag, err := s.db.Exec(ctx, query,
		sessionID, rec.Time, rec.Source, rec.Translated, rec.SourceCode, rec.TargetCode,
	)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("history: record: %d rows inserted", tag.RowsAffected())
	}
	return nil
}
