package repository

import (
	"time"

	"bootcamp_backend/internal/model"

	"gorm.io/gorm"
)

type UserProgressRepository struct {
	DB *gorm.DB
}

func NewUserProgressRepository(db *gorm.DB) *UserProgressRepository {
	return &UserProgressRepository{DB: db}
}

func (r *UserProgressRepository) FindByUserAndPathway(userID uint, pathwayID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.Where("user_id = ? AND pathway_id = ?", userID, pathwayID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *UserProgressRepository) ListByUser(userID uint) ([]model.UserProgress, error) {
	var progress []model.UserProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

func (r *UserProgressRepository) Create(progress *model.UserProgress) error {
	return r.DB.Create(progress).Error
}

func (r *UserProgressRepository) Save(progress *model.UserProgress) error {
	return r.DB.Save(progress).Error
}

func (r *UserProgressRepository) FindStreak(userID uint) (*model.LearningStreak, error) {
	var streak model.LearningStreak
	if err := r.DB.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

func (r *UserProgressRepository) CreateStreak(streak *model.LearningStreak) error {
	return r.DB.Create(streak).Error
}

func (r *UserProgressRepository) SaveStreak(streak *model.LearningStreak) error {
	return r.DB.Save(streak).Error
}

func (r *UserProgressRepository) ListAchievements() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("category, id").Find(&achievements).Error
	return achievements, err
}

func (r *UserProgressRepository) ListUserAchievements(userID uint) ([]model.UserAchievement, error) {
	var earned []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).Order("earned_at DESC").Find(&earned).Error
	return earned, err
}

// Award grants an achievement once; granting an already-earned one is a
// silent no-op.
func (r *UserProgressRepository) Award(userID uint, achievementID string) error {
	var existing model.UserAchievement
	err := r.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return r.DB.Create(&model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now(),
	}).Error
}
