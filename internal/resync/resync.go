// Package resync rebuilds the backlog of branch reindex tasks. One
// trigger clears all previously pending and completed reindex tasks,
// then submits a fresh task per branch needing sync, most recently
// analyzed projects first. The whole sequence runs in one database
// transaction so a failure never leaves the queue half cleared.
package resync

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"qgate/internal/logger"
	"qgate/internal/metrics"
	"qgate/internal/models"
	"qgate/internal/store"
)

// Store is the transactional boundary the resyncer runs against.
type Store interface {
	WithTx(ctx context.Context, fn func(tx store.Tx) error) error
}

// Summary reports what one trigger did.
type Summary struct {
	DeletedPending   int `json:"deleted_pending"`
	DeletedCompleted int `json:"deleted_completed"`
	Branches         int `json:"branches"`
	Projects         int `json:"projects"`
	Submitted        int `json:"submitted"`
}

// Resyncer rebuilds the reindex backlog on demand.
type Resyncer struct {
	store Store
	tasks chan<- *models.Task
}

// New creates a resyncer submitting tasks for notification on tasks
func New(st Store, tasks chan<- *models.Task) *Resyncer {
	return &Resyncer{store: st, tasks: tasks}
}

// Trigger re-synchronizes the reindex backlog into the task queue and,
// after the transaction commits, hands the submitted tasks off for
// notification. Repeated triggers do not accumulate duplicate work.
func (r *Resyncer) Trigger(ctx context.Context) (*Summary, error) {
	log := logger.WithComponent("resync")
	start := time.Now()

	summary := &Summary{}
	var submitted []*models.Task

	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		if err := r.clearPreviousTasks(ctx, tx, summary); err != nil {
			return err
		}

		if err := tx.FlagAllBranchesNeedingSync(ctx); err != nil {
			return err
		}
		branches, err := tx.SelectBranchesNeedingSync(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("count", len(branches)).Msg("branches found in need of reindex")
		summary.Branches = len(branches)
		if len(branches) == 0 {
			return nil
		}

		byProject := groupByProject(branches)
		projectIDs := make([]string, 0, len(byProject))
		for projectID := range byProject {
			projectIDs = append(projectIDs, projectID)
		}
		log.Info().Int("count", len(projectIDs)).Msg("projects found in need of reindex")
		summary.Projects = len(projectIDs)

		lastAnalysis, err := tx.SelectLastAnalysisDates(ctx, projectIDs)
		if err != nil {
			return err
		}
		sortByLastAnalysis(projectIDs, lastAnalysis)

		tasks := make([]*models.Task, 0, len(branches))
		for _, projectID := range projectIDs {
			for _, branch := range byProject[projectID] {
				tasks = append(tasks, models.NewReindexTask(uuid.NewString(), branch))
			}
		}

		if err := tx.InsertTasks(ctx, tasks); err != nil {
			return err
		}
		submitted = tasks
		summary.Submitted = len(tasks)
		return nil
	})
	if err != nil {
		metrics.ResyncRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	// Notifications only go out once the queue state is committed
	for _, task := range submitted {
		select {
		case r.tasks <- task:
		case <-ctx.Done():
			log.Warn().Msg("context cancelled while queueing notifications")
			return summary, nil
		}
	}

	metrics.ResyncRunsTotal.WithLabelValues("success").Inc()
	metrics.ResyncTasksSubmitted.Add(float64(len(submitted)))
	metrics.ResyncDuration.Observe(time.Since(start).Seconds())

	log.Info().
		Int("branches", summary.Branches).
		Int("projects", summary.Projects).
		Int("submitted", summary.Submitted).
		Dur("duration", time.Since(start)).
		Msg("resync complete")
	return summary, nil
}

// clearPreviousTasks deletes all pending and completed reindex tasks
// and their characteristics, so repeated triggers stay idempotent.
func (r *Resyncer) clearPreviousTasks(ctx context.Context, tx store.Tx, summary *Summary) error {
	log := logger.WithComponent("resync")

	pending, err := tx.SelectTaskIDs(ctx, models.TaskTypeBranchReindex, models.TaskStatusPending)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(pending)).Msg("pending reindex tasks found to be deleted")

	completed, err := tx.SelectTaskIDs(ctx, models.TaskTypeBranchReindex, models.TaskStatusCompleted)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(completed)).Msg("completed reindex tasks found to be deleted")

	stale := append(append([]string{}, pending...), completed...)
	if err := tx.DeleteTasks(ctx, stale); err != nil {
		return err
	}
	if err := tx.DeleteTaskCharacteristics(ctx, stale); err != nil {
		return err
	}

	summary.DeletedPending = len(pending)
	summary.DeletedCompleted = len(completed)
	return nil
}

func groupByProject(branches []models.Branch) map[string][]models.Branch {
	byProject := make(map[string][]models.Branch)
	for _, branch := range branches {
		byProject[branch.ProjectID] = append(byProject[branch.ProjectID], branch)
	}
	return byProject
}

// sortByLastAnalysis orders projects by most recent analysis first.
// Projects never analyzed go last, in arbitrary relative order.
func sortByLastAnalysis(projectIDs []string, lastAnalysis map[string]time.Time) {
	sort.SliceStable(projectIDs, func(i, j int) bool {
		a, okA := lastAnalysis[projectIDs[i]]
		b, okB := lastAnalysis[projectIDs[j]]
		if !okA {
			return false
		}
		if !okB {
			return true
		}
		return a.After(b)
	})
}
