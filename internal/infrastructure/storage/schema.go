package storage

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS problems (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source VARCHAR(32) NOT NULL,
	source_url TEXT NOT NULL DEFAULT '',
	category VARCHAR(64) NOT NULL,
	severity_score DOUBLE PRECISION NOT NULL,
	mention_count INTEGER NOT NULL DEFAULT 1,
	keywords TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_problems_category ON problems(category);
CREATE INDEX IF NOT EXISTS idx_problems_severity ON problems(severity_score DESC);

CREATE TABLE IF NOT EXISTS ideas (
	id UUID PRIMARY KEY,
	problem_id TEXT NOT NULL DEFAULT '',
	framework_type VARCHAR(32) NOT NULL,
	title TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ideas_problem ON ideas(problem_id);

CREATE TABLE IF NOT EXISTS validations (
	id UUID PRIMARY KEY,
	idea_id TEXT NOT NULL DEFAULT '',
	type VARCHAR(32) NOT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'pending',
	results JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_validations_idea ON validations(idea_id);
`

// CreateTables applies the schema idempotently.
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
