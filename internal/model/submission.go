package model

import "time"

type SubmissionStatus string

const (
	SubmissionUploaded SubmissionStatus = "uploaded"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

type Grade string

const (
	GradePass Grade = "pass"
	GradeFail Grade = "fail"
)

// ResourceSubmission is one uploaded file against an upload-requiring
// resource. Submissions are soft-deleted only; the gorm DeletedAt on
// UUIDBase keeps deleted rows out of queries while preserving the audit
// trail. The latest non-deleted row decides the resource's effective
// review status.
// swagger:model ResourceSubmission
type ResourceSubmission struct {
	UUIDBase
	UserID       uint   `gorm:"index:idx_sub_user_resource;not null" json:"userId"`
	ResourceID   string `gorm:"size:200;index:idx_sub_user_resource;not null" json:"resourceId"`
	CompletionID string `gorm:"size:36;index" json:"completionId"`

	FileName      string `gorm:"size:500;not null" json:"fileName"`
	FileSizeBytes int64  `gorm:"not null" json:"fileSizeBytes"`
	FileType      string `gorm:"size:100" json:"fileType"`

	// Object storage coordinates; opaque to the workflow.
	StorageBucket string `gorm:"size:255" json:"storageBucket"`
	StoragePath   string `gorm:"type:text" json:"storagePath"`
	StorageURL    string `gorm:"type:text" json:"storageUrl"`

	Status   SubmissionStatus `gorm:"size:50;default:'uploaded'" json:"status"`
	UploadIP string           `gorm:"size:64" json:"-"`

	ReviewedBy     *uint      `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`
	ReviewComments string     `gorm:"type:text" json:"reviewComments"`
	Grade          Grade      `gorm:"size:10" json:"grade,omitempty"`
}

func (ResourceSubmission) TableName() string {
	return "resource_submissions"
}
