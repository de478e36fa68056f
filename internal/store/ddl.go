package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	branchesTable := `
    CREATE TABLE IF NOT EXISTS branches (
        id TEXT PRIMARY KEY,
        project_id TEXT NOT NULL,
        branch_key TEXT NOT NULL,
        branch_type TEXT NOT NULL,
        needs_sync BOOLEAN DEFAULT FALSE NOT NULL
    );`

	snapshotsTable := `
    CREATE TABLE IF NOT EXISTS project_snapshots (
        id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
        project_id TEXT NOT NULL,
        analyzed_at TIMESTAMPTZ NOT NULL
    );`

	tasksTable := `
    CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        task_type TEXT NOT NULL,
        component_id TEXT NOT NULL,
        project_id TEXT NOT NULL,
        status TEXT NOT NULL,
        submitted_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP NOT NULL
    );`

	characteristicsTable := `
    CREATE TABLE IF NOT EXISTS task_characteristics (
        task_id TEXT NOT NULL,
        characteristic_key TEXT NOT NULL,
        characteristic_value TEXT NOT NULL,
        PRIMARY KEY (task_id, characteristic_key)
    );`

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("err starting transaction: %w", err)
	}

	for _, ddl := range []string{branchesTable, snapshotsTable, tasksTable, characteristicsTable} {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("err creating tables: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("err committing transaction: %w", err)
	}

	return nil
}
