package repository

import (
	"bootcamp_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) FindByID(id string) (*model.Resource, error) {
	var resource model.Resource
	if err := r.DB.First(&resource, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *ResourceRepository) FindByModule(moduleID string) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.Where("module_id = ?", moduleID).Order("order_index").Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) CountByModule(moduleID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Resource{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}
