package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// schemaStatements crea las tablas que usan los repositorios. Idempotente.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS animals (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL DEFAULT '',
		breed      TEXT NOT NULL DEFAULT '',
		sex        TEXT NOT NULL CHECK (sex IN ('female', 'sire')),
		traits     JSONB NOT NULL DEFAULT '{}'::jsonb,
		available  BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS animals_sex_breed_idx ON animals (sex, breed)`,
	`CREATE TABLE IF NOT EXISTS mating_plans (
		id                  UUID PRIMARY KEY,
		female_id           TEXT NOT NULL REFERENCES animals (id),
		sire_id             TEXT NOT NULL REFERENCES animals (id),
		mating_type         TEXT NOT NULL,
		score               DOUBLE PRECISION NOT NULL,
		grade               TEXT NOT NULL,
		expected_inbreeding DOUBLE PRECISION NOT NULL,
		acceptable          BOOLEAN NOT NULL,
		result              JSONB NOT NULL,
		status              TEXT NOT NULL,
		success             BOOLEAN,
		notes               TEXT NOT NULL DEFAULT '',
		created_by          TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS mating_plans_created_idx ON mating_plans (created_at DESC)`,
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema aplica el esquema sobre el pool (o cualquier Exec compatible).
func EnsureSchema(ctx context.Context, conn execer) error {
	for i, stmt := range schemaStatements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
