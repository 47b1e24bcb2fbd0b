package repository

import (
	"bootcamp_backend/internal/model"

	"gorm.io/gorm"
)

// ResourceCompletionRepository is the durable completion ledger: one row
// per (user, resource), created on first start and never deleted.
type ResourceCompletionRepository struct {
	DB *gorm.DB
}

func NewResourceCompletionRepository(db *gorm.DB) *ResourceCompletionRepository {
	return &ResourceCompletionRepository{DB: db}
}

func (r *ResourceCompletionRepository) FindByUserAndResource(userID uint, resourceID string) (*model.ResourceCompletion, error) {
	var completion model.ResourceCompletion
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

func (r *ResourceCompletionRepository) FindByID(id string) (*model.ResourceCompletion, error) {
	var completion model.ResourceCompletion
	if err := r.DB.First(&completion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &completion, nil
}

// ListByModule returns all of a user's completion rows for one module,
// keyed by resource id. Resources without a row are simply absent.
func (r *ResourceCompletionRepository) ListByModule(userID uint, moduleID string) (map[string]model.ResourceCompletion, error) {
	var completions []model.ResourceCompletion
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).Find(&completions).Error
	if err != nil {
		return nil, err
	}

	byResource := make(map[string]model.ResourceCompletion, len(completions))
	for _, c := range completions {
		byResource[c.ResourceID] = c
	}
	return byResource, nil
}

func (r *ResourceCompletionRepository) Create(completion *model.ResourceCompletion) error {
	return r.DB.Create(completion).Error
}

func (r *ResourceCompletionRepository) Save(completion *model.ResourceCompletion) error {
	return r.DB.Save(completion).Error
}

// IncrementSubmissionCount bumps the counter in place. The increment runs
// at the storage layer so concurrent uploads to the same resource never
// lose updates.
func (r *ResourceCompletionRepository) IncrementSubmissionCount(completionID string) error {
	return r.DB.Model(&model.ResourceCompletion{}).
		Where("id = ?", completionID).
		UpdateColumn("submission_count", gorm.Expr("submission_count + ?", 1)).Error
}

// DecrementSubmissionCount floors at zero; used when a submission is
// soft-deleted so missing-upload checks see the live count.
func (r *ResourceCompletionRepository) DecrementSubmissionCount(completionID string) error {
	return r.DB.Model(&model.ResourceCompletion{}).
		Where("id = ?", completionID).
		UpdateColumn("submission_count",
			gorm.Expr("CASE WHEN submission_count > 0 THEN submission_count - 1 ELSE 0 END")).Error
}

// SetStatus updates the review-owned fields of a completion row.
func (r *ResourceCompletionRepository) SetStatus(completionID string, status model.CompletionStatus) error {
	return r.DB.Model(&model.ResourceCompletion{}).
		Where("id = ?", completionID).
		Update("status", status).Error
}
