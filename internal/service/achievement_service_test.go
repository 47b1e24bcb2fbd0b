package service

import (
	"testing"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAchievementService(db *gorm.DB) *AchievementService {
	return NewAchievementService(
		repository.NewUserProgressRepository(db),
		repository.NewModuleCompletionRepository(db),
	)
}

func setStreak(t *testing.T, db *gorm.DB, userID uint, current, longest int, lastActivity time.Time) {
	t.Helper()
	day := truncateToDay(lastActivity)
	require.NoError(t, db.Create(&model.LearningStreak{
		UserID:           userID,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: &day,
	}).Error)
}

func TestRecordActivity_FirstActivityStartsTheStreak(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)

	require.NoError(t, s.RecordActivity(user.ID))

	streak, err := s.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
}

func TestRecordActivity_SameDayCountsOnce(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)

	require.NoError(t, s.RecordActivity(user.ID))
	require.NoError(t, s.RecordActivity(user.ID))
	require.NoError(t, s.RecordActivity(user.ID))

	streak, err := s.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestRecordActivity_ConsecutiveDayExtends(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)
	setStreak(t, db, user.ID, 4, 6, time.Now().AddDate(0, 0, -1))

	require.NoError(t, s.RecordActivity(user.ID))

	streak, err := s.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, streak.CurrentStreak)
	assert.Equal(t, 6, streak.LongestStreak)
}

func TestRecordActivity_GapResetsButKeepsLongest(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)
	setStreak(t, db, user.ID, 9, 9, time.Now().AddDate(0, 0, -3))

	require.NoError(t, s.RecordActivity(user.ID))

	streak, err := s.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 9, streak.LongestStreak)
}

func TestGetStreak_ZeroValuedWhenNoneExists(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)

	streak, err := s.GetStreak(user.ID)
	require.NoError(t, err)
	assert.Zero(t, streak.CurrentStreak)
	assert.Zero(t, streak.LongestStreak)
	assert.Nil(t, streak.LastActivityDate)
}

func TestCheckAndAward_GrantsByMetricAndStaysIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)

	require.NoError(t, db.Create(&model.Achievement{
		ID: "first-module", Name: "First Steps", Description: "d",
		Category: "progress", RequirementType: "modules_completed", RequirementValue: 1,
	}).Error)
	require.NoError(t, db.Create(&model.Achievement{
		ID: "five-modules", Name: "Getting Serious", Description: "d",
		Category: "progress", RequirementType: "modules_completed", RequirementValue: 5,
	}).Error)

	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID:         user.ID,
		ModuleID:       "m1",
		PathwayID:      "pw",
		ApprovalStatus: model.ApprovalApproved,
		CompletedAt:    time.Now(),
	}).Error)

	require.NoError(t, s.CheckAndAward(user.ID))
	require.NoError(t, s.CheckAndAward(user.ID))

	views, err := s.ListAchievements(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]AchievementView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.True(t, byID["first-module"].Earned)
	assert.NotNil(t, byID["first-module"].EarnedAt)
	assert.False(t, byID["five-modules"].Earned)

	var granted int64
	db.Model(&model.UserAchievement{}).Where("user_id = ?", user.ID).Count(&granted)
	assert.EqualValues(t, 1, granted, "re-checking must not double-award")
}

func TestCheckAndAward_PendingModulesDoNotCount(t *testing.T) {
	db := newTestDB(t)
	s := newAchievementService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)

	require.NoError(t, db.Create(&model.Achievement{
		ID: "first-module", Name: "First Steps", Description: "d",
		Category: "progress", RequirementType: "modules_completed", RequirementValue: 1,
	}).Error)

	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID:         user.ID,
		ModuleID:       "m1",
		PathwayID:      "pw",
		ApprovalStatus: model.ApprovalPending,
		CompletedAt:    time.Now(),
	}).Error)

	require.NoError(t, s.CheckAndAward(user.ID))

	var granted int64
	db.Model(&model.UserAchievement{}).Where("user_id = ?", user.ID).Count(&granted)
	assert.Zero(t, granted)
}
