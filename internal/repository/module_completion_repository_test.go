package repository

import (
	"fmt"
	"testing"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func pendingCompletion(t *testing.T, db *gorm.DB, userID uint, moduleID string) *model.ModuleCompletion {
	t.Helper()
	completion := &model.ModuleCompletion{
		UserID:         userID,
		ModuleID:       moduleID,
		PathwayID:      "pw",
		ApprovalStatus: model.ApprovalPending,
		CompletedAt:    time.Now(),
	}
	require.NoError(t, db.Create(completion).Error)
	return completion
}

func TestTransitionStatus_WritesOnlyWhenExpectedStatusHolds(t *testing.T) {
	db := newTestDB(t)
	repo := NewModuleCompletionRepository(db)
	completion := pendingCompletion(t, db, 1, "m1")

	rows, err := repo.TransitionStatus(completion.ID,
		model.ApprovalPending, model.ApprovalApproved,
		map[string]interface{}{"reviewed_by": uint(9)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	fresh, err := repo.FindByUserAndModule(1, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, fresh.ApprovalStatus)
	require.NotNil(t, fresh.ReviewedBy)
	assert.EqualValues(t, 9, *fresh.ReviewedBy)
}

func TestTransitionStatus_StaleExpectationWritesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewModuleCompletionRepository(db)
	completion := pendingCompletion(t, db, 1, "m1")

	// First writer wins.
	rows, err := repo.TransitionStatus(completion.ID,
		model.ApprovalPending, model.ApprovalApproved, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	// Second writer observed pending, but the row moved on. Zero rows,
	// no error, and the fields map is not applied.
	rows, err = repo.TransitionStatus(completion.ID,
		model.ApprovalPending, model.ApprovalRejected,
		map[string]interface{}{"review_comments": "late decision"})
	require.NoError(t, err)
	assert.Zero(t, rows)

	fresh, err := repo.FindByUserAndModule(1, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, fresh.ApprovalStatus)
	assert.Empty(t, fresh.ReviewComments)
}

func TestTransitionStatus_MissingRowWritesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewModuleCompletionRepository(db)

	rows, err := repo.TransitionStatus(uuid.New().String(),
		model.ApprovalPending, model.ApprovalApproved, nil)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestCountApproved_IgnoresPendingAndRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewModuleCompletionRepository(db)

	for i, status := range []model.ApprovalStatus{
		model.ApprovalApproved, model.ApprovalApproved,
		model.ApprovalPending, model.ApprovalRejected,
	} {
		require.NoError(t, db.Create(&model.ModuleCompletion{
			UserID:         1,
			ModuleID:       fmt.Sprintf("m%d", i),
			PathwayID:      "pw",
			ApprovalStatus: status,
			CompletedAt:    time.Now(),
		}).Error)
	}

	count, err := repo.CountApproved(1, "pw")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestSumApprovedTime_OnlyApprovedMinutesCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewModuleCompletionRepository(db)

	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID: 1, ModuleID: "m1", PathwayID: "pw",
		ApprovalStatus: model.ApprovalApproved, CompletedAt: time.Now(), TimeSpentMinutes: 30,
	}).Error)
	require.NoError(t, db.Create(&model.ModuleCompletion{
		UserID: 1, ModuleID: "m2", PathwayID: "pw",
		ApprovalStatus: model.ApprovalPending, CompletedAt: time.Now(), TimeSpentMinutes: 999,
	}).Error)

	total, err := repo.SumApprovedTime(1, "pw")
	require.NoError(t, err)
	assert.Equal(t, 30, total)
}

func TestSumApprovedTime_EmptyIsZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewModuleCompletionRepository(db)

	total, err := repo.SumApprovedTime(42, "pw")
	require.NoError(t, err)
	assert.Zero(t, total)
}
