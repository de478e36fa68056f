package resync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"qgate/internal/models"
	"qgate/internal/resync"
	"qgate/internal/store"
)

// fakeTx implements store.Tx against in-memory state.
type fakeTx struct {
	branches     []models.Branch
	lastAnalysis map[string]time.Time
	pending      []string
	completed    []string

	flagged            bool
	deletedTasks       []string
	deletedCharTaskIDs []string
	insertedTasks      []*models.Task
	failInsert         bool
}

func (f *fakeTx) FlagAllBranchesNeedingSync(ctx context.Context) error {
	f.flagged = true
	return nil
}

func (f *fakeTx) SelectBranchesNeedingSync(ctx context.Context) ([]models.Branch, error) {
	return f.branches, nil
}

func (f *fakeTx) SelectLastAnalysisDates(ctx context.Context, projectIDs []string) (map[string]time.Time, error) {
	return f.lastAnalysis, nil
}

func (f *fakeTx) SelectTaskIDs(ctx context.Context, taskType string, status models.TaskStatus) ([]string, error) {
	if status == models.TaskStatusPending {
		return f.pending, nil
	}
	return f.completed, nil
}

func (f *fakeTx) DeleteTasks(ctx context.Context, ids []string) error {
	f.deletedTasks = append(f.deletedTasks, ids...)
	return nil
}

func (f *fakeTx) DeleteTaskCharacteristics(ctx context.Context, taskIDs []string) error {
	f.deletedCharTaskIDs = append(f.deletedCharTaskIDs, taskIDs...)
	return nil
}

func (f *fakeTx) InsertTasks(ctx context.Context, tasks []*models.Task) error {
	if f.failInsert {
		return errors.New("insert failed")
	}
	f.insertedTasks = append(f.insertedTasks, tasks...)
	return nil
}

// fakeStore runs the transaction body against the fake, tracking
// whether it reported success (commit) or failure (rollback).
type fakeStore struct {
	tx         *fakeTx
	committed  bool
	rolledBack bool
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := fn(f.tx); err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

func branch(id, projectID, key string, branchType models.BranchType) models.Branch {
	return models.Branch{ID: id, ProjectID: projectID, Key: key, Type: branchType, NeedsSync: true}
}

func TestTriggerSubmitsTasksByProjectRecency(t *testing.T) {
	now := time.Now()
	tx := &fakeTx{
		branches: []models.Branch{
			branch("b1", "old-project", "main", models.BranchTypeBranch),
			branch("b2", "fresh-project", "main", models.BranchTypeBranch),
			branch("b3", "fresh-project", "1234", models.BranchTypePullRequest),
			branch("b4", "never-analyzed", "main", models.BranchTypeBranch),
		},
		lastAnalysis: map[string]time.Time{
			"old-project":   now.Add(-24 * time.Hour),
			"fresh-project": now,
		},
	}
	st := &fakeStore{tx: tx}
	tasks := make(chan *models.Task, 10)

	summary, err := resync.New(st, tasks).Trigger(context.Background())
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if !st.committed {
		t.Error("transaction was not committed")
	}
	if !tx.flagged {
		t.Error("branches were not flagged as needing sync")
	}
	if summary.Branches != 4 || summary.Projects != 3 || summary.Submitted != 4 {
		t.Errorf("summary = %+v", summary)
	}

	if len(tx.insertedTasks) != 4 {
		t.Fatalf("inserted %d tasks, want 4", len(tx.insertedTasks))
	}

	// most recently analyzed project first, never analyzed last
	order := []string{
		tx.insertedTasks[0].ProjectID,
		tx.insertedTasks[1].ProjectID,
		tx.insertedTasks[2].ProjectID,
		tx.insertedTasks[3].ProjectID,
	}
	want := []string{"fresh-project", "fresh-project", "old-project", "never-analyzed"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("task order = %v, want %v", order, want)
		}
	}

	// every submitted task is handed off for notification
	close(tasks)
	notified := 0
	for range tasks {
		notified++
	}
	if notified != 4 {
		t.Errorf("notified %d tasks, want 4", notified)
	}
}

func TestTriggerTaskCharacteristics(t *testing.T) {
	tx := &fakeTx{
		branches: []models.Branch{
			branch("b1", "p1", "feature/x", models.BranchTypeBranch),
			branch("b2", "p1", "42", models.BranchTypePullRequest),
		},
		lastAnalysis: map[string]time.Time{},
	}
	st := &fakeStore{tx: tx}
	tasks := make(chan *models.Task, 10)

	if _, err := resync.New(st, tasks).Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}

	for _, task := range tx.insertedTasks {
		if task.Type != models.TaskTypeBranchReindex {
			t.Errorf("task type = %q", task.Type)
		}
		if task.ID == "" {
			t.Error("task has no id")
		}
		if task.Status != models.TaskStatusPending {
			t.Errorf("task status = %q", task.Status)
		}
	}

	first := tx.insertedTasks[0].Characteristics
	if first[models.CharacteristicBranch] != "feature/x" {
		t.Errorf("branch characteristic = %q", first[models.CharacteristicBranch])
	}
	if first[models.CharacteristicBranchType] != string(models.BranchTypeBranch) {
		t.Errorf("branchType characteristic = %q", first[models.CharacteristicBranchType])
	}

	second := tx.insertedTasks[1].Characteristics
	if second[models.CharacteristicPullRequest] != "42" {
		t.Errorf("pullRequest characteristic = %q", second[models.CharacteristicPullRequest])
	}
	if _, ok := second[models.CharacteristicBranch]; ok {
		t.Error("pull request task must not carry a branch characteristic")
	}
}

func TestTriggerClearsStaleTasks(t *testing.T) {
	tx := &fakeTx{
		pending:   []string{"t1", "t2"},
		completed: []string{"t3"},
	}
	st := &fakeStore{tx: tx}
	tasks := make(chan *models.Task, 1)

	summary, err := resync.New(st, tasks).Trigger(context.Background())
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if summary.DeletedPending != 2 || summary.DeletedCompleted != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(tx.deletedTasks) != 3 {
		t.Errorf("deleted %d tasks, want 3", len(tx.deletedTasks))
	}
	if len(tx.deletedCharTaskIDs) != 3 {
		t.Errorf("deleted characteristics for %d tasks, want 3", len(tx.deletedCharTaskIDs))
	}
	if summary.Submitted != 0 {
		t.Errorf("submitted = %d, want 0 with no branches", summary.Submitted)
	}
}

func TestTriggerRollsBackOnFailure(t *testing.T) {
	tx := &fakeTx{
		branches:   []models.Branch{branch("b1", "p1", "main", models.BranchTypeBranch)},
		failInsert: true,
	}
	st := &fakeStore{tx: tx}
	tasks := make(chan *models.Task, 1)

	_, err := resync.New(st, tasks).Trigger(context.Background())
	if err == nil {
		t.Fatal("Trigger() error = nil, want failure")
	}
	if !st.rolledBack {
		t.Error("transaction was not rolled back")
	}
	if len(tasks) != 0 {
		t.Error("no notifications must go out when the transaction fails")
	}
}
