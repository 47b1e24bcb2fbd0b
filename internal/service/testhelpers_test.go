package service

import (
	"fmt"
	"testing"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/pkg/database"

	"github.com/google/uuid"
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

func newProgressService(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewPathwayRepository(db),
		repository.NewModuleRepository(db),
		repository.NewResourceRepository(db),
		repository.NewResourceCompletionRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewModuleCompletionRepository(db),
		repository.NewUserProgressRepository(db),
		nil,
	)
}

func newApprovalService(db *gorm.DB) *ApprovalService {
	progress := newProgressService(db)
	achievements := NewAchievementService(
		repository.NewUserProgressRepository(db),
		repository.NewModuleCompletionRepository(db),
	)
	return NewApprovalService(
		db,
		progress,
		achievements,
		&NotificationService{notifiers: []Notifier{LogNotifier{}}},
		repository.NewModuleRepository(db),
		repository.NewResourceRepository(db),
		repository.NewResourceCompletionRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewModuleCompletionRepository(db),
	)
}

func createUser(t *testing.T, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		FullName: "Test " + string(role),
		Email:    fmt.Sprintf("%s@test.local", uuid.New().String()[:8]),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPathway(t *testing.T, db *gorm.DB, id string) *model.Pathway {
	t.Helper()
	pathway := &model.Pathway{
		ID:         id,
		Slug:       id,
		Title:      "Pathway " + id,
		ShortTitle: id,
		Instructor: "Ada",
	}
	require.NoError(t, db.Create(pathway).Error)
	return pathway
}

func createModule(t *testing.T, db *gorm.DB, pathwayID, id string, order int) *model.Module {
	t.Helper()
	module := &model.Module{
		ID:         id,
		PathwayID:  pathwayID,
		Title:      "Module " + id,
		OrderIndex: order,
	}
	require.NoError(t, db.Create(module).Error)
	return module
}

func createResource(t *testing.T, db *gorm.DB, pathwayID, moduleID, id string, order int, requiresUpload bool) *model.Resource {
	t.Helper()
	resource := &model.Resource{
		ID:             id,
		ModuleID:       moduleID,
		PathwayID:      pathwayID,
		Type:           model.Video,
		Title:          "Resource " + id,
		OrderIndex:     order,
		RequiresUpload: requiresUpload,
		MaxFileSizeMB:  50,
	}
	if requiresUpload {
		resource.Type = model.Project
	}
	require.NoError(t, db.Create(resource).Error)
	return resource
}

// completeResource writes a counted completion row directly, bypassing the
// resource lifecycle, for tests that only exercise the rollup.
func completeResource(t *testing.T, db *gorm.DB, userID uint, resource *model.Resource, submissions int) *model.ResourceCompletion {
	t.Helper()
	now := time.Now()
	completion := &model.ResourceCompletion{
		UserID:             userID,
		ResourceID:         resource.ID,
		ModuleID:           resource.ModuleID,
		PathwayID:          resource.PathwayID,
		Status:             model.StatusCompleted,
		ProgressPercentage: 100,
		StartedAt:          now,
		CompletedAt:        &now,
		LastAccessedAt:     now,
		SubmissionRequired: resource.RequiresUpload,
		SubmissionCount:    submissions,
	}
	if submissions > 0 {
		completion.Status = model.StatusSubmitted
	}
	require.NoError(t, db.Create(completion).Error)
	return completion
}

func createSubmission(t *testing.T, db *gorm.DB, userID uint, resource *model.Resource, completionID string, status model.SubmissionStatus) *model.ResourceSubmission {
	t.Helper()
	submission := &model.ResourceSubmission{
		UserID:        userID,
		ResourceID:    resource.ID,
		CompletionID:  completionID,
		FileName:      "work.zip",
		FileSizeBytes: 1024,
		FileType:      "zip",
		StoragePath:   fmt.Sprintf("submissions/%s/%d/%s/work.zip", resource.PathwayID, userID, resource.ID),
		Status:        status,
	}
	require.NoError(t, db.Create(submission).Error)
	return submission
}
