package models

import "time"

// Task characteristics keys
const (
	CharacteristicBranch      = "branch"
	CharacteristicPullRequest = "pullRequest"
	CharacteristicBranchType  = "branchType"
)

// TaskTypeBranchReindex tags background tasks that rebuild the index of
// a single branch.
const TaskTypeBranchReindex = "branch_reindex"

// TaskStatus tracks a task through the queue.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// Task is one unit of background work persisted in the queue and
// announced to executors.
type Task struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	ComponentID string            `json:"component_id"`
	ProjectID   string            `json:"project_id"`
	Status      TaskStatus        `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`

	// Small key-value map qualifying the task target (branch name or
	// pull-request id, branch-type tag)
	Characteristics map[string]string `json:"characteristics,omitempty"`
}

// BranchType distinguishes long-lived branches from pull requests.
type BranchType string

const (
	BranchTypeBranch      BranchType = "BRANCH"
	BranchTypePullRequest BranchType = "PULL_REQUEST"
)

// Branch is a project branch known to the store. Key is the branch name
// for branches and the pull-request id for pull requests.
type Branch struct {
	ID        string
	ProjectID string
	Key       string
	Type      BranchType
	NeedsSync bool
}

// NewReindexTask builds the pending queue entry announcing that the
// given branch must be reindexed.
func NewReindexTask(id string, branch Branch) *Task {
	characteristics := make(map[string]string, 2)
	if branch.Type == BranchTypeBranch {
		characteristics[CharacteristicBranch] = branch.Key
	} else {
		characteristics[CharacteristicPullRequest] = branch.Key
	}
	characteristics[CharacteristicBranchType] = string(branch.Type)

	return &Task{
		ID:              id,
		Type:            TaskTypeBranchReindex,
		ComponentID:     branch.ID,
		ProjectID:       branch.ProjectID,
		Status:          TaskStatusPending,
		SubmittedAt:     time.Now().UTC(),
		Characteristics: characteristics,
	}
}
