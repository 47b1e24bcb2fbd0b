package service

import (
	"context"
	"io"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/internal/util"

	"gorm.io/gorm"
)

// ResourceService owns the per-resource learning lifecycle: start, track,
// complete, and the submission pipeline for upload-requiring resources.
type ResourceService struct {
	DB             *gorm.DB
	Storage        *StorageService
	Progress       *ProgressService
	ResourceRepo   *repository.ResourceRepository
	CompletionRepo *repository.ResourceCompletionRepository
	SubmissionRepo *repository.SubmissionRepository
}

func NewResourceService(
	db *gorm.DB,
	storage *StorageService,
	progress *ProgressService,
	resourceRepo *repository.ResourceRepository,
	completionRepo *repository.ResourceCompletionRepository,
	submissionRepo *repository.SubmissionRepository,
) *ResourceService {
	return &ResourceService{
		DB:             db,
		Storage:        storage,
		Progress:       progress,
		ResourceRepo:   resourceRepo,
		CompletionRepo: completionRepo,
		SubmissionRepo: submissionRepo,
	}
}

// ResourceView is one resource joined with the caller's completion state
// and live submissions.
type ResourceView struct {
	Resource    model.Resource             `json:"resource"`
	Completion  *model.ResourceCompletion  `json:"completion,omitempty"`
	Submissions []model.ResourceSubmission `json:"submissions,omitempty"`
}

// ListModuleResources returns a module's resources in order with the
// caller's progress attached.
func (s *ResourceService) ListModuleResources(userID uint, moduleID string) ([]ResourceView, error) {
	resources, err := s.ResourceRepo.FindByModule(moduleID)
	if err != nil {
		return nil, err
	}
	completions, err := s.CompletionRepo.ListByModule(userID, moduleID)
	if err != nil {
		return nil, err
	}

	views := make([]ResourceView, 0, len(resources))
	for _, resource := range resources {
		view := ResourceView{Resource: resource}
		if completion, ok := completions[resource.ID]; ok {
			c := completion
			view.Completion = &c
			if resource.RequiresUpload {
				subs, err := s.SubmissionRepo.ListByResource(userID, resource.ID)
				if err != nil {
					return nil, err
				}
				view.Submissions = subs
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Start creates the completion row on first access; subsequent calls only
// refresh the access timestamp.
func (s *ResourceService) Start(ctx context.Context, userID uint, resourceID string) (*model.ResourceCompletion, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}

	completion, err := s.CompletionRepo.FindByUserAndResource(userID, resourceID)
	if err == nil {
		completion.LastAccessedAt = time.Now()
		if completion.Status == model.StatusNotStarted {
			completion.Status = model.StatusInProgress
		}
		if err := s.CompletionRepo.Save(completion); err != nil {
			return nil, err
		}
		return completion, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := time.Now()
	completion = &model.ResourceCompletion{
		UserID:             userID,
		ResourceID:         resourceID,
		ModuleID:           resource.ModuleID,
		PathwayID:          resource.PathwayID,
		Status:             model.StatusInProgress,
		StartedAt:          now,
		LastAccessedAt:     now,
		SubmissionRequired: resource.RequiresUpload,
	}
	if err := s.CompletionRepo.Create(completion); err != nil {
		// Unique index collision from a concurrent first access; the
		// existing row wins.
		existing, readErr := s.CompletionRepo.FindByUserAndResource(userID, resourceID)
		if readErr != nil {
			return nil, err
		}
		return existing, nil
	}
	return completion, nil
}

// UpdateProgress records partial progress (e.g. video position). It never
// demotes a resource that already counts toward module completion.
func (s *ResourceService) UpdateProgress(ctx context.Context, userID uint, resourceID string, percent, timeSpentDelta int) (*model.ResourceCompletion, error) {
	completion, err := s.Start(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	if !completion.Status.Counted() {
		completion.ProgressPercentage = percent
	}
	if timeSpentDelta > 0 {
		completion.TimeSpentMinutes += timeSpentDelta
	}
	completion.LastAccessedAt = time.Now()

	if err := s.CompletionRepo.Save(completion); err != nil {
		return nil, err
	}
	return completion, nil
}

// Complete marks a resource finished. Already-submitted or reviewed rows
// stay as they are; completion is monotonic from the student's side.
func (s *ResourceService) Complete(ctx context.Context, userID uint, resourceID string, timeSpentDelta int) (*model.ResourceCompletion, error) {
	completion, err := s.Start(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if completion.Status == model.StatusNotStarted || completion.Status == model.StatusInProgress {
		completion.Status = model.StatusCompleted
		completion.CompletedAt = &now
	}
	completion.ProgressPercentage = 100
	if timeSpentDelta > 0 {
		completion.TimeSpentMinutes += timeSpentDelta
	}
	completion.LastAccessedAt = now

	if err := s.CompletionRepo.Save(completion); err != nil {
		return nil, err
	}

	s.Progress.InvalidateCache(ctx, userID)
	return completion, nil
}

// Upload validates and stores one submission file. The object goes to
// storage first; if that fails nothing is recorded and the returned
// StorageError tells the caller the ledger is unchanged.
func (s *ResourceService) Upload(ctx context.Context, userID uint, resourceID, fileName, contentType string, size int64, reader io.Reader, uploadIP string) (*model.ResourceSubmission, error) {
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrResourceNotFound
		}
		return nil, err
	}
	if !resource.RequiresUpload {
		return nil, util.ErrUploadNotAccepted
	}
	if !util.ExtensionAccepted(fileName, resource.AcceptedFileTypes) {
		return nil, util.ErrFileTypeNotAllowed
	}
	if size > resource.MaxFileSizeBytes() {
		return nil, util.ErrFileTooLarge
	}

	completion, err := s.Start(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}

	objectName := util.BuildSubmissionPath(resource.PathwayID, userID, resourceID, util.UniqueFileName(fileName))
	storageURL, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	submission := &model.ResourceSubmission{
		UserID:        userID,
		ResourceID:    resourceID,
		CompletionID:  completion.ID,
		FileName:      fileName,
		FileSizeBytes: size,
		FileType:      util.FileExt(fileName),
		StorageBucket: s.Storage.Bucket,
		StoragePath:   objectName,
		StorageURL:    storageURL,
		Status:        model.SubmissionUploaded,
		UploadIP:      uploadIP,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubmissionRepository(tx).Create(submission); err != nil {
			return err
		}
		txCompletions := repository.NewResourceCompletionRepository(tx)
		if err := txCompletions.IncrementSubmissionCount(completion.ID); err != nil {
			return err
		}

		now := time.Now()
		completion.Status = model.StatusSubmitted
		completion.ProgressPercentage = 100
		if completion.CompletedAt == nil {
			completion.CompletedAt = &now
		}
		completion.LastAccessedAt = now
		return tx.Model(&model.ResourceCompletion{}).
			Where("id = ?", completion.ID).
			Updates(map[string]interface{}{
				"status":              completion.Status,
				"progress_percentage": completion.ProgressPercentage,
				"completed_at":        completion.CompletedAt,
				"last_accessed_at":    completion.LastAccessedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	s.Progress.InvalidateCache(ctx, userID)
	return submission, nil
}

// ListSubmissions returns the caller's live submissions for a resource,
// newest first.
func (s *ResourceService) ListSubmissions(userID uint, resourceID string) ([]model.ResourceSubmission, error) {
	return s.SubmissionRepo.ListByResource(userID, resourceID)
}

// SignedDownloadURL returns a short-lived download link. Students can
// only fetch their own files; reviewers can fetch anyone's.
func (s *ResourceService) SignedDownloadURL(ctx context.Context, requesterID uint, isReviewer bool, submissionID string) (string, error) {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrSubmissionNotFound
		}
		return "", err
	}
	if submission.UserID != requesterID && !isReviewer {
		return "", util.ErrNotOwner
	}
	return s.Storage.SignedURL(ctx, submission.StoragePath, time.Hour)
}

// DeleteSubmission soft-deletes an upload and decrements the live count
// so the module gate sees it as missing again. The stored object and the
// row both survive for audit.
func (s *ResourceService) DeleteSubmission(ctx context.Context, requesterID uint, isReviewer bool, submissionID string) error {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrSubmissionNotFound
		}
		return err
	}
	if submission.UserID != requesterID && !isReviewer {
		return util.ErrNotOwner
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubmissionRepository(tx).SoftDelete(submissionID); err != nil {
			return err
		}
		if submission.CompletionID != "" {
			return repository.NewResourceCompletionRepository(tx).DecrementSubmissionCount(submission.CompletionID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Progress.InvalidateCache(ctx, requesterID)
	return nil
}
