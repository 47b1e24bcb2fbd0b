package service

import (
	"testing"
	"time"

	"bootcamp_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleProgress_FloorDivision(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	createResource(t, db, "pw", "m1", "r2", 1, false)
	createResource(t, db, "pw", "m1", "r3", 2, false)

	completeResource(t, db, user.ID, r1, 0)

	mp, err := s.ModuleProgress(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, 33, mp.Percent, "1 of 3 must floor to 33, never round to 34")
	assert.False(t, mp.AllComplete)
	assert.ElementsMatch(t, []string{"r2", "r3"}, mp.MissingResourceIDs)
}

func TestModuleProgress_ZeroResourcesIsVacuouslyComplete(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "empty", 0)

	mp, err := s.ModuleProgress(user.ID, "empty")
	require.NoError(t, err)
	assert.Equal(t, 100, mp.Percent)
	assert.True(t, mp.AllComplete)
	assert.Empty(t, mp.MissingResourceIDs)
	assert.Empty(t, mp.MissingUploadIDs)
}

func TestModuleProgress_UploadGateHoldsBackAllComplete(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	r2 := createResource(t, db, "pw", "m1", "r2", 1, true)

	completeResource(t, db, user.ID, r1, 0)
	completeResource(t, db, user.ID, r2, 0)

	mp, err := s.ModuleProgress(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, 100, mp.Percent, "percent counts completion status, not uploads")
	assert.False(t, mp.AllComplete, "missing upload must block all-complete at 100%")
	assert.Equal(t, []string{"r2"}, mp.MissingUploadIDs)

	// One live submission closes the gate.
	require.NoError(t, db.Model(&model.ResourceCompletion{}).
		Where("user_id = ? AND resource_id = ?", user.ID, r2.ID).
		Update("submission_count", 1).Error)

	mp, err = s.ModuleProgress(user.ID, "m1")
	require.NoError(t, err)
	assert.True(t, mp.AllComplete)
	assert.Empty(t, mp.MissingUploadIDs)
}

func TestModuleProgress_InProgressDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	createResource(t, db, "pw", "m1", "r2", 1, false)

	now := time.Now()
	require.NoError(t, db.Create(&model.ResourceCompletion{
		UserID:             user.ID,
		ResourceID:         r1.ID,
		ModuleID:           r1.ModuleID,
		PathwayID:          r1.PathwayID,
		Status:             model.StatusInProgress,
		ProgressPercentage: 80,
		StartedAt:          now,
		LastAccessedAt:     now,
	}).Error)

	mp, err := s.ModuleProgress(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, 0, mp.Percent)
	assert.ElementsMatch(t, []string{"r1", "r2"}, mp.MissingResourceIDs)
}

func TestPathwayProgress_OnlyApprovedModulesCount(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	createModule(t, db, "pw", "m2", 1)
	createModule(t, db, "pw", "m3", 2)

	for i, status := range []model.ApprovalStatus{model.ApprovalApproved, model.ApprovalPending, model.ApprovalRejected} {
		require.NoError(t, db.Create(&model.ModuleCompletion{
			UserID:         user.ID,
			ModuleID:       []string{"m1", "m2", "m3"}[i],
			PathwayID:      "pw",
			ApprovalStatus: status,
			CompletedAt:    time.Now(),
		}).Error)
	}

	pp, err := s.PathwayProgress(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, pp.CompletedModules, "pending and rejected must not advance the pathway")
	assert.Equal(t, 3, pp.TotalModules)
	assert.Equal(t, 33, pp.Percent)
}

func TestGetModuleState_NoRowMeansNotSubmitted(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	createResource(t, db, "pw", "m1", "r1", 0, false)

	state, err := s.GetModuleState(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalNotSubmitted, state.ApprovalStatus)
	assert.Equal(t, 0, state.Percent)
}

func TestGetPathwayDetail_NextModuleSkipsApproved(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	createModule(t, db, "pw", "m2", 1)

	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID:         user.ID,
		ModuleID:       "m1",
		PathwayID:      "pw",
		ApprovalStatus: model.ApprovalApproved,
		CompletedAt:    time.Now(),
	}).Error)

	detail, err := s.GetPathwayDetail(user.ID, "pw")
	require.NoError(t, err)
	require.NotNil(t, detail.NextModule)
	assert.Equal(t, "m2", detail.NextModule.ID)
	assert.True(t, detail.Modules[0].Completed)
	assert.False(t, detail.Modules[1].Completed)

	// First access created the progress row.
	require.NotNil(t, detail.Progress)
	assert.Equal(t, user.ID, detail.Progress.UserID)
}

func TestRecomputePathwayProgress_DerivesFromApprovedRows(t *testing.T) {
	db := newTestDB(t)
	s := newProgressService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	createModule(t, db, "pw", "m2", 1)

	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID:           user.ID,
		ModuleID:         "m1",
		PathwayID:        "pw",
		ApprovalStatus:   model.ApprovalApproved,
		CompletedAt:      time.Now(),
		TimeSpentMinutes: 90,
	}).Error)

	require.NoError(t, s.RecomputePathwayProgress(db, user.ID, "pw"))

	progress, err := s.ProgressRepo.FindByUserAndPathway(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedModules)
	assert.Equal(t, 50, progress.ProgressPercentage)
	assert.Equal(t, 90, progress.TotalTimeSpentMinutes)
	assert.Nil(t, progress.CompletedAt)

	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID:           user.ID,
		ModuleID:         "m2",
		PathwayID:        "pw",
		ApprovalStatus:   model.ApprovalApproved,
		CompletedAt:      time.Now(),
		TimeSpentMinutes: 30,
	}).Error)
	require.NoError(t, s.RecomputePathwayProgress(db, user.ID, "pw"))

	progress, err = s.ProgressRepo.FindByUserAndPathway(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 100, progress.ProgressPercentage)
	assert.Equal(t, 120, progress.TotalTimeSpentMinutes)
	assert.NotNil(t, progress.CompletedAt)
}
