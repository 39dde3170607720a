package model

import "time"

// Task statuses. A task synchronized from a git commit is always completed.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single unit of trackable work. Tasks form a forest via ParentID;
// children are resolved at query time, never stored as an object graph.
type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index" json:"user_id"`
	ParentID    *uint  `gorm:"index" json:"parent_id,omitempty"`
	Title       string `gorm:"size:500;not null" json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `gorm:"index;default:pending" json:"status"`
	Priority    string `gorm:"default:medium" json:"priority"`

	// Provenance, set only when the task originated from a commit.
	// The hash is unique when present; SQLite permits any number of NULLs.
	GitCommitHash *string `gorm:"uniqueIndex" json:"git_commit_hash,omitempty"`
	GitBranch     string  `json:"git_branch,omitempty"`
	GitSummary    string  `json:"git_summary,omitempty"`

	StartDate *time.Time `gorm:"index" json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"index" json:"end_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Progress  int        `gorm:"default:0" json:"progress"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Derived, not persisted.
	ChildrenCount int    `gorm:"-" json:"children_count,omitempty"`
	Children      []Task `gorm:"-" json:"children,omitempty"`
}
