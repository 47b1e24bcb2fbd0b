package repository

import (
	"bootcamp_backend/internal/model"

	"gorm.io/gorm"
)

// ModuleCompletionRepository stores the approval rows. All status writes
// go through TransitionStatus, which conditions the update on the status
// the caller observed; a zero rows-affected result means the row changed
// underneath the caller (or never held the expected status) and no write
// happened.
type ModuleCompletionRepository struct {
	DB *gorm.DB
}

func NewModuleCompletionRepository(db *gorm.DB) *ModuleCompletionRepository {
	return &ModuleCompletionRepository{DB: db}
}

func (r *ModuleCompletionRepository) FindByUserAndModule(userID uint, moduleID string) (*model.ModuleCompletion, error) {
	var completion model.ModuleCompletion
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

func (r *ModuleCompletionRepository) ListByUser(userID uint, pathwayID string) ([]model.ModuleCompletion, error) {
	query := r.DB.Where("user_id = ?", userID)
	if pathwayID != "" {
		query = query.Where("pathway_id = ?", pathwayID)
	}

	var completions []model.ModuleCompletion
	err := query.Order("completed_at").Find(&completions).Error
	return completions, err
}

// CountApproved counts the rows that advance pathway progress. Pending
// and rejected modules never count.
func (r *ModuleCompletionRepository) CountApproved(userID uint, pathwayID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleCompletion{}).
		Where("user_id = ? AND pathway_id = ? AND approval_status = ?",
			userID, pathwayID, model.ApprovalApproved).
		Count(&count).Error
	return count, err
}

// SumApprovedTime totals time spent across approved modules in a pathway.
func (r *ModuleCompletionRepository) SumApprovedTime(userID uint, pathwayID string) (int, error) {
	var total int64
	err := r.DB.Model(&model.ModuleCompletion{}).
		Where("user_id = ? AND pathway_id = ? AND approval_status = ?",
			userID, pathwayID, model.ApprovalApproved).
		Select("COALESCE(SUM(time_spent_minutes), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *ModuleCompletionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleCompletion{}).
		Where("user_id = ? AND approval_status = ?", userID, model.ApprovalApproved).
		Count(&count).Error
	return count, err
}

func (r *ModuleCompletionRepository) Create(completion *model.ModuleCompletion) error {
	return r.DB.Create(completion).Error
}

// TransitionStatus performs the compare-and-swap: the update only applies
// when the row still holds the status the caller read. Returns the number
// of rows written (0 or 1).
func (r *ModuleCompletionRepository) TransitionStatus(id string, from, to model.ApprovalStatus, fields map[string]interface{}) (int64, error) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["approval_status"] = to

	result := r.DB.Model(&model.ModuleCompletion{}).
		Where("id = ? AND approval_status = ?", id, from).
		Updates(fields)
	return result.RowsAffected, result.Error
}
