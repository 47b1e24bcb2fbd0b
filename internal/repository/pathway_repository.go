package repository

import (
	"bootcamp_backend/internal/model"

	"gorm.io/gorm"
)

type PathwayRepository struct {
	DB *gorm.DB
}

func NewPathwayRepository(db *gorm.DB) *PathwayRepository {
	return &PathwayRepository{DB: db}
}

func (r *PathwayRepository) FindAll() ([]model.Pathway, error) {
	var pathways []model.Pathway
	err := r.DB.Order("id").Find(&pathways).Error
	return pathways, err
}

func (r *PathwayRepository) FindByID(id string) (*model.Pathway, error) {
	var pathway model.Pathway
	if err := r.DB.First(&pathway, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pathway, nil
}

func (r *PathwayRepository) FindBySlug(slug string) (*model.Pathway, error) {
	var pathway model.Pathway
	if err := r.DB.First(&pathway, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &pathway, nil
}

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) FindByID(id string) (*model.Module, error) {
	var module model.Module
	if err := r.DB.First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ModuleRepository) FindByPathway(pathwayID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("pathway_id = ?", pathwayID).Order("order_index").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) CountByPathway(pathwayID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Module{}).Where("pathway_id = ?", pathwayID).Count(&count).Error
	return count, err
}
