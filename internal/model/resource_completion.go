package model

import "time"

type CompletionStatus string

const (
	StatusNotStarted CompletionStatus = "not_started"
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
	StatusSubmitted  CompletionStatus = "submitted"
	StatusReviewed   CompletionStatus = "reviewed"
)

// Counted reports whether the status contributes to module progress.
func (s CompletionStatus) Counted() bool {
	return s == StatusCompleted || s == StatusSubmitted || s == StatusReviewed
}

// ResourceCompletion records a user's progress against one resource.
// Rows are created on first start and never deleted; review side effects
// (submission count, status) are the only writes not owned by the student.
// swagger:model ResourceCompletion
type ResourceCompletion struct {
	UUIDBase
	UserID     uint   `gorm:"not null;uniqueIndex:idx_user_resource" json:"userId"`
	ResourceID string `gorm:"size:200;not null;uniqueIndex:idx_user_resource" json:"resourceId"`
	ModuleID   string `gorm:"size:100;index;not null" json:"moduleId"`
	PathwayID  string `gorm:"size:100;index;not null" json:"pathwayId"`

	Status             CompletionStatus `gorm:"size:50;default:'not_started'" json:"status"`
	ProgressPercentage int              `gorm:"default:0" json:"progressPercentage"`
	TimeSpentMinutes   int              `gorm:"default:0" json:"timeSpentMinutes"`

	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	LastAccessedAt time.Time  `json:"lastAccessedAt"`

	SubmissionRequired bool `gorm:"default:false" json:"submissionRequired"`
	SubmissionCount    int  `gorm:"default:0" json:"submissionCount"`

	Notes string `gorm:"type:text" json:"notes"`
}

func (ResourceCompletion) TableName() string {
	return "resource_completions"
}
