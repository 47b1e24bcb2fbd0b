package database

import (
	"fmt"
	"log"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedAchievements(db)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Pathway{},
		&model.Module{},
		&model.Resource{},
		&model.ResourceCompletion{},
		&model.ResourceSubmission{},
		&model.ModuleCompletion{},
		&model.UserProgress{},
		&model.LearningStreak{},
		&model.Achievement{},
		&model.UserAchievement{},
	)
}

// seedAchievements installs the default achievement catalog on first run.
func seedAchievements(db *gorm.DB) {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Achievement{
		{ID: "first-module", Name: "First Steps", Description: "Get your first module approved", Icon: "footprints", Category: "progress", RequirementType: "modules_completed", RequirementValue: 1},
		{ID: "five-modules", Name: "Getting Serious", Description: "Get five modules approved", Icon: "rocket", Category: "progress", RequirementType: "modules_completed", RequirementValue: 5},
		{ID: "pathway-starter", Name: "Pathway Pioneer", Description: "Start your first learning pathway", Icon: "compass", Category: "progress", RequirementType: "pathways_started", RequirementValue: 1},
		{ID: "pathway-finisher", Name: "Finisher", Description: "Complete an entire pathway", Icon: "trophy", Category: "progress", RequirementType: "pathways_completed", RequirementValue: 1},
		{ID: "week-streak", Name: "Week Warrior", Description: "Learn seven days in a row", Icon: "flame", Category: "streak", RequirementType: "streak_days", RequirementValue: 7},
		{ID: "month-streak", Name: "Unstoppable", Description: "Learn thirty days in a row", Icon: "bolt", Category: "streak", RequirementType: "streak_days", RequirementValue: 30},
		{ID: "deep-work", Name: "Deep Work", Description: "Log 1000 minutes of approved learning time", Icon: "hourglass", Category: "time", RequirementType: "time_spent_minutes", RequirementValue: 1000},
	}
	for _, achievement := range defaults {
		db.Create(&achievement)
	}
}
