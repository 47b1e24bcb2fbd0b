package service

import (
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"

	"gorm.io/gorm"
)

// AchievementService maintains learning streaks and awards achievements
// from workflow milestones. Everything here is best-effort decoration:
// callers log failures and move on.
type AchievementService struct {
	ProgressRepo         *repository.UserProgressRepository
	ModuleCompletionRepo *repository.ModuleCompletionRepository
}

func NewAchievementService(
	progressRepo *repository.UserProgressRepository,
	moduleCompletionRepo *repository.ModuleCompletionRepository,
) *AchievementService {
	return &AchievementService{
		ProgressRepo:         progressRepo,
		ModuleCompletionRepo: moduleCompletionRepo,
	}
}

// RecordActivity bumps the user's daily streak. Multiple activities on
// the same day count once; a gap of more than one day resets the run.
func (s *AchievementService) RecordActivity(userID uint) error {
	today := truncateToDay(time.Now())

	streak, err := s.ProgressRepo.FindStreak(userID)
	if err == gorm.ErrRecordNotFound {
		return s.ProgressRepo.CreateStreak(&model.LearningStreak{
			UserID:           userID,
			CurrentStreak:    1,
			LongestStreak:    1,
			LastActivityDate: &today,
		})
	}
	if err != nil {
		return err
	}

	if streak.LastActivityDate != nil {
		last := truncateToDay(*streak.LastActivityDate)
		switch int(today.Sub(last).Hours() / 24) {
		case 0:
			return nil
		case 1:
			streak.CurrentStreak++
		default:
			streak.CurrentStreak = 1
		}
	} else {
		streak.CurrentStreak = 1
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastActivityDate = &today
	return s.ProgressRepo.SaveStreak(streak)
}

// GetStreak returns the user's streak, zero-valued when none exists yet.
func (s *AchievementService) GetStreak(userID uint) (*model.LearningStreak, error) {
	streak, err := s.ProgressRepo.FindStreak(userID)
	if err == gorm.ErrRecordNotFound {
		return &model.LearningStreak{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return streak, nil
}

// CheckAndAward grants every achievement whose requirement the user now
// meets. Awarding is idempotent, so re-checking after each milestone is
// safe.
func (s *AchievementService) CheckAndAward(userID uint) error {
	achievements, err := s.ProgressRepo.ListAchievements()
	if err != nil {
		return err
	}
	if len(achievements) == 0 {
		return nil
	}

	modulesApproved, err := s.ModuleCompletionRepo.CountByUser(userID)
	if err != nil {
		return err
	}

	progress, err := s.ProgressRepo.ListByUser(userID)
	if err != nil {
		return err
	}
	var pathwaysStarted, pathwaysCompleted, timeSpent int64
	for _, p := range progress {
		pathwaysStarted++
		timeSpent += int64(p.TotalTimeSpentMinutes)
		if p.CompletedAt != nil {
			pathwaysCompleted++
		}
	}

	streak, err := s.GetStreak(userID)
	if err != nil {
		return err
	}

	for _, achievement := range achievements {
		var metric int64
		switch achievement.RequirementType {
		case "modules_completed":
			metric = modulesApproved
		case "pathways_started":
			metric = pathwaysStarted
		case "pathways_completed":
			metric = pathwaysCompleted
		case "streak_days":
			metric = int64(streak.CurrentStreak)
		case "time_spent_minutes":
			metric = timeSpent
		default:
			continue
		}

		if metric >= int64(achievement.RequirementValue) {
			if err := s.ProgressRepo.Award(userID, achievement.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// AchievementView is an achievement with the caller's earned state.
type AchievementView struct {
	model.Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earnedAt,omitempty"`
}

// ListAchievements returns the full catalog flagged with what the user
// has earned.
func (s *AchievementService) ListAchievements(userID uint) ([]AchievementView, error) {
	achievements, err := s.ProgressRepo.ListAchievements()
	if err != nil {
		return nil, err
	}
	earned, err := s.ProgressRepo.ListUserAchievements(userID)
	if err != nil {
		return nil, err
	}

	earnedAt := make(map[string]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	views := make([]AchievementView, 0, len(achievements))
	for _, achievement := range achievements {
		view := AchievementView{Achievement: achievement}
		if at, ok := earnedAt[achievement.ID]; ok {
			view.Earned = true
			t := at
			view.EarnedAt = &t
		}
		views = append(views, view)
	}
	return views, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
