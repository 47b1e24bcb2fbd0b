package model

import "time"

// UserProgress is the derived per-(user, pathway) rollup. It is always
// recomputed from approved module completions, never mutated on its own.
// swagger:model UserProgress
type UserProgress struct {
	UUIDBase
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_pathway" json:"userId"`
	PathwayID string `gorm:"size:100;not null;uniqueIndex:idx_user_pathway" json:"pathwayId"`

	CurrentModuleID       *string `gorm:"size:100" json:"currentModuleId,omitempty"`
	ProgressPercentage    int     `gorm:"default:0" json:"progressPercentage"`
	CompletedModules      int     `gorm:"default:0" json:"completedModules"`
	TotalTimeSpentMinutes int     `gorm:"default:0" json:"totalTimeSpentMinutes"`

	StartedAt      time.Time  `json:"startedAt"`
	LastAccessedAt time.Time  `json:"lastAccessedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// swagger:model Achievement
type Achievement struct {
	ID               string    `gorm:"primaryKey;size:100" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	Icon             string    `gorm:"size:100" json:"icon"`
	Category         string    `gorm:"size:50;not null" json:"category"`
	RequirementType  string    `gorm:"size:50;not null" json:"requirementType"`
	RequirementValue int       `json:"requirementValue"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// swagger:model UserAchievement
type UserAchievement struct {
	UUIDBase
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID string    `gorm:"size:100;not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

// LearningStreak tracks consecutive days with learning activity.
// swagger:model LearningStreak
type LearningStreak struct {
	UUIDBase
	UserID           uint       `gorm:"not null;uniqueIndex" json:"userId"`
	CurrentStreak    int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak    int        `gorm:"default:0" json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

func (LearningStreak) TableName() string {
	return "learning_streaks"
}
