package model

import "time"

type ApprovalStatus string

const (
	// ApprovalNotSubmitted is the implicit state when no completion row
	// exists yet; it is never stored.
	ApprovalNotSubmitted ApprovalStatus = "not_submitted"
	ApprovalPending      ApprovalStatus = "pending"
	ApprovalApproved     ApprovalStatus = "approved"
	ApprovalRejected     ApprovalStatus = "rejected"
)

// ModuleCompletion is the instructor-gated record of a student finishing
// a module. At most one row exists per (user, module); resubmission after
// rejection flips the same row back to pending. Rows are never deleted.
// swagger:model ModuleCompletion
type ModuleCompletion struct {
	UUIDBase
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_module" json:"userId"`
	ModuleID  string `gorm:"size:100;not null;uniqueIndex:idx_user_module" json:"moduleId"`
	PathwayID string `gorm:"size:100;index;not null" json:"pathwayId"`

	ApprovalStatus   ApprovalStatus `gorm:"size:50;default:'pending'" json:"approvalStatus"`
	CompletedAt      time.Time      `json:"completedAt"`
	TimeSpentMinutes int            `gorm:"default:0" json:"timeSpentMinutes"`

	ReviewedBy     *uint      `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	ReviewComments string     `gorm:"type:text" json:"reviewComments"`
}

func (ModuleCompletion) TableName() string {
	return "module_completions"
}
