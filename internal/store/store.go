// Package store is the relational persistence layer for branches,
// analysis snapshots and the background task queue, backed by Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qgate/internal/models"
)

// Tx exposes the store operations available inside one transaction.
// The resync routine runs its whole read-modify-write sequence against
// a single Tx, so the queue is never left half cleared.
type Tx interface {
	// FlagAllBranchesNeedingSync marks every known branch as needing reindexing
	FlagAllBranchesNeedingSync(ctx context.Context) error

	// SelectBranchesNeedingSync returns every branch currently flagged
	SelectBranchesNeedingSync(ctx context.Context) ([]models.Branch, error)

	// SelectLastAnalysisDates returns the most recent analysis time per
	// project. Projects never analyzed are absent from the map.
	SelectLastAnalysisDates(ctx context.Context, projectIDs []string) (map[string]time.Time, error)

	// SelectTaskIDs returns the ids of tasks of the given type and status,
	// oldest first
	SelectTaskIDs(ctx context.Context, taskType string, status models.TaskStatus) ([]string, error)

	// DeleteTasks removes the given tasks from the queue
	DeleteTasks(ctx context.Context, ids []string) error

	// DeleteTaskCharacteristics removes the characteristics of the given tasks
	DeleteTaskCharacteristics(ctx context.Context, taskIDs []string) error

	// InsertTasks bulk-inserts tasks and their characteristics
	InsertTasks(ctx context.Context, tasks []*models.Task) error
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres, verifies connectivity and creates the
// schema if missing.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("can't ping database: %w", err)
	}

	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("can't ping database: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// WithTx runs fn inside one transaction, committing on success and
// rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}
	return nil
}

// sqlTx implements Tx over a pgx transaction.
type sqlTx struct {
	tx pgx.Tx
}

func (t *sqlTx) FlagAllBranchesNeedingSync(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, `UPDATE branches SET needs_sync = TRUE`); err != nil {
		return fmt.Errorf("can't flag branches: %w", err)
	}
	return nil
}

func (t *sqlTx) SelectBranchesNeedingSync(ctx context.Context) ([]models.Branch, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, project_id, branch_key, branch_type
		FROM branches
		WHERE needs_sync = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("can't select branches: %w", err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		b := models.Branch{NeedsSync: true}
		var branchType string
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Key, &branchType); err != nil {
			return nil, fmt.Errorf("can't scan branch: %w", err)
		}
		b.Type = models.BranchType(branchType)
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read branches: %w", err)
	}
	return branches, nil
}

func (t *sqlTx) SelectLastAnalysisDates(ctx context.Context, projectIDs []string) (map[string]time.Time, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT project_id, MAX(analyzed_at)
		FROM project_snapshots
		WHERE project_id = ANY($1)
		GROUP BY project_id`, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("can't select snapshots: %w", err)
	}
	defer rows.Close()

	dates := make(map[string]time.Time)
	for rows.Next() {
		var projectID string
		var analyzedAt time.Time
		if err := rows.Scan(&projectID, &analyzedAt); err != nil {
			return nil, fmt.Errorf("can't scan snapshot: %w", err)
		}
		dates[projectID] = analyzedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read snapshots: %w", err)
	}
	return dates, nil
}

func (t *sqlTx) SelectTaskIDs(ctx context.Context, taskType string, status models.TaskStatus) ([]string, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id
		FROM tasks
		WHERE task_type = $1 AND status = $2
		ORDER BY submitted_at`, taskType, string(status))
	if err != nil {
		return nil, fmt.Errorf("can't select tasks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("can't scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read task ids: %w", err)
	}
	return ids, nil
}

func (t *sqlTx) DeleteTasks(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("can't delete tasks: %w", err)
	}
	return nil
}

func (t *sqlTx) DeleteTaskCharacteristics(ctx context.Context, taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM task_characteristics WHERE task_id = ANY($1)`, taskIDs); err != nil {
		return fmt.Errorf("can't delete task characteristics: %w", err)
	}
	return nil
}

func (t *sqlTx) InsertTasks(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, task := range tasks {
		batch.Queue(`
			INSERT INTO tasks (id, task_type, component_id, project_id, status, submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			task.ID, task.Type, task.ComponentID, task.ProjectID, string(task.Status), task.SubmittedAt)
		for key, value := range task.Characteristics {
			batch.Queue(`
				INSERT INTO task_characteristics (task_id, characteristic_key, characteristic_value)
				VALUES ($1, $2, $3)`,
				task.ID, key, value)
		}
	}

	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("can't insert tasks: %w", err)
		}
	}
	return nil
}
