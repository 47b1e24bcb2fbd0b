package repository

import (
	"time"

	"bootcamp_backend/internal/model"

	"gorm.io/gorm"
)

// SubmissionRepository stores uploaded-file records. Deletion is always
// soft (gorm DeletedAt), so deleted rows drop out of every query here but
// stay in the table as audit trail.
type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.ResourceSubmission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.ResourceSubmission, error) {
	var submission model.ResourceSubmission
	if err := r.DB.First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListByResource returns a user's submissions for one resource, newest
// first.
func (r *SubmissionRepository) ListByResource(userID uint, resourceID string) ([]model.ResourceSubmission, error) {
	var submissions []model.ResourceSubmission
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// LatestStatusByModule returns, per resource in the module, the review
// status of the user's most recent non-deleted submission. Used by the
// auto-approval check after a resource-level review.
func (r *SubmissionRepository) LatestStatusByModule(userID uint, moduleID string) (map[string]model.SubmissionStatus, error) {
	var submissions []model.ResourceSubmission
	err := r.DB.
		Joins("JOIN resources ON resources.id = resource_submissions.resource_id").
		Where("resource_submissions.user_id = ? AND resources.module_id = ?", userID, moduleID).
		Order("resource_submissions.created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[string]model.SubmissionStatus)
	for _, s := range submissions {
		if _, seen := latest[s.ResourceID]; !seen {
			latest[s.ResourceID] = s.Status
		}
	}
	return latest, nil
}

// PendingSubmission is a review-queue row joined with student, resource
// and pathway context for the instructor dashboard.
type PendingSubmission struct {
	ID            string                 `json:"id"`
	UserID        uint                   `json:"userId"`
	UserEmail     string                 `json:"userEmail"`
	UserName      string                 `json:"userName"`
	ResourceID    string                 `json:"resourceId"`
	ResourceTitle string                 `json:"resourceTitle"`
	ResourceType  model.ResourceType     `json:"resourceType"`
	ModuleID      string                 `json:"moduleId"`
	ModuleTitle   string                 `json:"moduleTitle"`
	PathwayID     string                 `json:"pathwayId"`
	PathwayTitle  string                 `json:"pathwayTitle"`
	FileName      string                 `json:"fileName"`
	FileSizeBytes int64                  `json:"fileSizeBytes"`
	Status        model.SubmissionStatus `json:"status"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// ListPending returns the review queue: unreviewed uploads, oldest
// first, so the longest-waiting student is served next.
func (r *SubmissionRepository) ListPending(pathwayID string, limit, offset int) (int64, []PendingSubmission, error) {
	base := r.DB.Model(&model.ResourceSubmission{}).
		Joins("JOIN users ON users.id = resource_submissions.user_id").
		Joins("JOIN resources ON resources.id = resource_submissions.resource_id").
		Joins("JOIN modules ON modules.id = resources.module_id").
		Joins("JOIN pathways ON pathways.id = resources.pathway_id").
		Where("resource_submissions.status = ?", model.SubmissionUploaded)
	if pathwayID != "" {
		base = base.Where("resources.pathway_id = ?", pathwayID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var rows []PendingSubmission
	err := base.
		Select(`resource_submissions.id, resource_submissions.user_id,
			users.email AS user_email, users.full_name AS user_name,
			resource_submissions.resource_id, resources.title AS resource_title,
			resources.type AS resource_type,
			resources.module_id, modules.title AS module_title,
			resources.pathway_id, pathways.title AS pathway_title,
			resource_submissions.file_name, resource_submissions.file_size_bytes,
			resource_submissions.status, resource_submissions.created_at`).
		Order("resource_submissions.created_at ASC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	return total, rows, err
}

// Review stamps the instructor decision onto a submission.
func (r *SubmissionRepository) Review(id string, reviewerID uint, status model.SubmissionStatus, grade model.Grade, comments string) error {
	now := time.Now()
	return r.DB.Model(&model.ResourceSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"grade":           grade,
			"review_comments": comments,
			"reviewed_by":     reviewerID,
			"reviewed_at":     now,
		}).Error
}

func (r *SubmissionRepository) SoftDelete(id string) error {
	return r.DB.Delete(&model.ResourceSubmission{}, "id = ?", id).Error
}
