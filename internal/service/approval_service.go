package service

import (
	"context"
	"strings"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/internal/util"
	"bootcamp_backend/pkg/logger"
	"bootcamp_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApprovalService is the module approval state machine:
//
//	NotSubmitted -> Pending -> Approved
//	                       -> Rejected -> Pending (resubmission)
//
// Every status write is conditioned on the status the transition observed
// (TransitionStatus), so a student resubmitting concurrently with an
// instructor's decision can never silently overwrite it. All
// preconditions fail closed: on any error the row is left untouched.
type ApprovalService struct {
	DB                   *gorm.DB
	Progress             *ProgressService
	Achievements         *AchievementService
	Notifications        *NotificationService
	ModuleRepo           *repository.ModuleRepository
	ResourceRepo         *repository.ResourceRepository
	CompletionRepo       *repository.ResourceCompletionRepository
	SubmissionRepo       *repository.SubmissionRepository
	ModuleCompletionRepo *repository.ModuleCompletionRepository
}

func NewApprovalService(
	db *gorm.DB,
	progress *ProgressService,
	achievements *AchievementService,
	notifications *NotificationService,
	moduleRepo *repository.ModuleRepository,
	resourceRepo *repository.ResourceRepository,
	completionRepo *repository.ResourceCompletionRepository,
	submissionRepo *repository.SubmissionRepository,
	moduleCompletionRepo *repository.ModuleCompletionRepository,
) *ApprovalService {
	return &ApprovalService{
		DB:                   db,
		Progress:             progress,
		Achievements:         achievements,
		Notifications:        notifications,
		ModuleRepo:           moduleRepo,
		ResourceRepo:         resourceRepo,
		CompletionRepo:       completionRepo,
		SubmissionRepo:       submissionRepo,
		ModuleCompletionRepo: moduleCompletionRepo,
	}
}

// SubmitForReview moves a module to pending once every resource is done
// and every upload-requiring resource has a live submission. Submitting
// an already-pending module is a no-op success; resubmission after
// rejection flips the same row back to pending and clears the previous
// review.
func (s *ApprovalService) SubmitForReview(ctx context.Context, userID uint, moduleID string, timeSpentMinutes int) (*model.ModuleCompletion, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	mp, err := s.Progress.ModuleProgress(userID, moduleID)
	if err != nil {
		return nil, err
	}
	if !mp.AllComplete {
		return nil, &util.IncompleteModuleError{
			ModuleID:           moduleID,
			MissingResourceIDs: mp.MissingResourceIDs,
			MissingUploadIDs:   mp.MissingUploadIDs,
		}
	}

	completion, err := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
	switch {
	case err == gorm.ErrRecordNotFound:
		completion = &model.ModuleCompletion{
			UserID:           userID,
			ModuleID:         moduleID,
			PathwayID:        module.PathwayID,
			ApprovalStatus:   model.ApprovalPending,
			CompletedAt:      time.Now(),
			TimeSpentMinutes: timeSpentMinutes,
		}
		if err := s.ModuleCompletionRepo.Create(completion); err != nil {
			// Unique index collision: someone else created the row in
			// between. Re-read and fall through to the same rules.
			existing, readErr := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
			if readErr != nil {
				return nil, err
			}
			if existing.ApprovalStatus == model.ApprovalPending {
				return existing, nil
			}
			return nil, util.ErrConcurrentModification
		}

	case err != nil:
		return nil, err

	case completion.ApprovalStatus == model.ApprovalPending:
		// Re-submission before review is harmless.
		return completion, nil

	case completion.ApprovalStatus == model.ApprovalApproved:
		logger.Log.Warn("submit on approved module",
			zap.Uint("userId", userID), zap.String("moduleId", moduleID))
		return nil, &util.InvalidTransitionError{From: model.ApprovalApproved, To: model.ApprovalPending}

	default: // rejected -> pending
		now := time.Now()
		rows, err := s.ModuleCompletionRepo.TransitionStatus(completion.ID,
			model.ApprovalRejected, model.ApprovalPending,
			map[string]interface{}{
				"completed_at":       now,
				"time_spent_minutes": timeSpentMinutes,
				"reviewed_by":        nil,
				"reviewed_at":        nil,
				"review_comments":    "",
			})
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			fresh, readErr := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
			if readErr == nil && fresh.ApprovalStatus == model.ApprovalPending {
				return fresh, nil
			}
			return nil, util.ErrConcurrentModification
		}
		completion, err = s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
		if err != nil {
			return nil, err
		}
	}

	monitoring.WorkflowTransitions.WithLabelValues("module_submitted").Inc()
	s.recordActivity(userID)
	s.Progress.InvalidateCache(ctx, userID)
	s.Notifications.Emit(EventModuleSubmitted, EventPayload{
		UserID:    userID,
		ModuleID:  moduleID,
		PathwayID: module.PathwayID,
	})
	return completion, nil
}

// Approve moves a pending module to approved and, in the same
// transaction, recomputes the pathway rollup so the student-visible
// progress bar reflects the decision atomically. Approving an
// already-approved module is an idempotent no-op.
func (s *ApprovalService) Approve(ctx context.Context, reviewerID, userID uint, moduleID, comments string) (*model.ModuleCompletion, error) {
	if reviewerID == 0 {
		return nil, util.ErrMissingReviewer
	}

	completion, err := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Log.Warn("approve on unsubmitted module",
				zap.Uint("userId", userID), zap.String("moduleId", moduleID))
			return nil, &util.InvalidTransitionError{From: model.ApprovalNotSubmitted, To: model.ApprovalApproved}
		}
		return nil, err
	}

	switch completion.ApprovalStatus {
	case model.ApprovalApproved:
		// Duplicate click or retry; return current state unchanged.
		return completion, nil
	case model.ApprovalRejected:
		return nil, &util.InvalidTransitionError{From: model.ApprovalRejected, To: model.ApprovalApproved}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewModuleCompletionRepository(tx)
		rows, err := txRepo.TransitionStatus(completion.ID,
			model.ApprovalPending, model.ApprovalApproved,
			map[string]interface{}{
				"reviewed_by":     reviewerID,
				"reviewed_at":     time.Now(),
				"review_comments": comments,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			fresh, readErr := txRepo.FindByUserAndModule(userID, moduleID)
			if readErr == nil && fresh.ApprovalStatus == model.ApprovalApproved {
				// Lost the race to another approver; their decision stands.
				completion = fresh
				return nil
			}
			return util.ErrConcurrentModification
		}

		return s.Progress.RecomputePathwayProgress(tx, userID, completion.PathwayID)
	})
	if err != nil {
		return nil, err
	}

	if completion.ApprovalStatus != model.ApprovalApproved {
		completion, err = s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
		if err != nil {
			return nil, err
		}
	}

	monitoring.WorkflowTransitions.WithLabelValues("module_approved").Inc()
	s.checkAchievements(userID)
	s.Progress.InvalidateCache(ctx, userID)
	s.Notifications.Emit(EventModuleApproved, EventPayload{
		UserID:    userID,
		ModuleID:  moduleID,
		PathwayID: completion.PathwayID,
		Details:   map[string]interface{}{"reviewerId": reviewerID},
	})
	return completion, nil
}

// Reject moves a pending module back behind the gate. Feedback is a hard
// requirement: a rejection without comments is a usage error. The
// student's resource completions and submissions are left untouched.
func (s *ApprovalService) Reject(ctx context.Context, reviewerID, userID uint, moduleID, comments string) (*model.ModuleCompletion, error) {
	if reviewerID == 0 {
		return nil, util.ErrMissingReviewer
	}
	if strings.TrimSpace(comments) == "" {
		return nil, util.ErrMissingFeedback
	}

	completion, err := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Log.Warn("reject on unsubmitted module",
				zap.Uint("userId", userID), zap.String("moduleId", moduleID))
			return nil, &util.InvalidTransitionError{From: model.ApprovalNotSubmitted, To: model.ApprovalRejected}
		}
		return nil, err
	}

	switch completion.ApprovalStatus {
	case model.ApprovalRejected:
		return completion, nil
	case model.ApprovalApproved:
		return nil, &util.InvalidTransitionError{From: model.ApprovalApproved, To: model.ApprovalRejected}
	}

	rows, err := s.ModuleCompletionRepo.TransitionStatus(completion.ID,
		model.ApprovalPending, model.ApprovalRejected,
		map[string]interface{}{
			"reviewed_by":     reviewerID,
			"reviewed_at":     time.Now(),
			"review_comments": comments,
		})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		fresh, readErr := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
		if readErr == nil && fresh.ApprovalStatus == model.ApprovalRejected {
			return fresh, nil
		}
		return nil, util.ErrConcurrentModification
	}

	completion, err = s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
	if err != nil {
		return nil, err
	}

	monitoring.WorkflowTransitions.WithLabelValues("module_rejected").Inc()
	s.Progress.InvalidateCache(ctx, userID)
	s.Notifications.Emit(EventModuleRejected, EventPayload{
		UserID:    userID,
		ModuleID:  moduleID,
		PathwayID: completion.PathwayID,
		Details:   map[string]interface{}{"reviewerId": reviewerID, "comments": comments},
	})
	return completion, nil
}

// ReviewSubmission applies an instructor decision to a single uploaded
// file and marks the resource completion reviewed. When the decision
// approves the last outstanding upload of an otherwise-complete module,
// the module is auto-promoted to approved without a separate bulk
// submit/approve round trip.
func (s *ApprovalService) ReviewSubmission(ctx context.Context, reviewerID uint, submissionID string, status model.SubmissionStatus, grade model.Grade, comments string) (*model.ResourceSubmission, error) {
	if reviewerID == 0 {
		return nil, util.ErrMissingReviewer
	}
	if status != model.SubmissionApproved && status != model.SubmissionRejected {
		return nil, util.ErrInvalidReviewStatus
	}

	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	resource, err := s.ResourceRepo.FindByID(submission.ResourceID)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubmissionRepository(tx).Review(submissionID, reviewerID, status, grade, comments); err != nil {
			return err
		}
		if submission.CompletionID != "" {
			return repository.NewResourceCompletionRepository(tx).SetStatus(submission.CompletionID, model.StatusReviewed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.WorkflowTransitions.WithLabelValues("submission_reviewed").Inc()
	s.Progress.InvalidateCache(ctx, submission.UserID)
	s.Notifications.Emit(EventResourceReviewed, EventPayload{
		UserID:    submission.UserID,
		ModuleID:  resource.ModuleID,
		PathwayID: resource.PathwayID,
		Details: map[string]interface{}{
			"resourceId":   submission.ResourceID,
			"submissionId": submissionID,
			"status":       status,
			"reviewerId":   reviewerID,
		},
	})

	if status == model.SubmissionApproved {
		if err := s.maybeAutoApprove(ctx, reviewerID, submission.UserID, resource.ModuleID, resource.PathwayID); err != nil {
			// The review itself succeeded; auto-promotion is an
			// optimization and its failure is not the caller's problem.
			logger.Log.Warn("auto-approval check failed",
				zap.String("moduleId", resource.ModuleID), zap.Error(err))
		}
	}

	return s.SubmissionRepo.FindByID(submissionID)
}

// maybeAutoApprove promotes (NotSubmitted|Pending) -> Approved when the
// module is all-complete and the latest live submission of every
// upload-requiring resource is approved. An explicit module-level
// rejection stands until the student resubmits.
func (s *ApprovalService) maybeAutoApprove(ctx context.Context, reviewerID, userID uint, moduleID, pathwayID string) error {
	mp, err := s.Progress.ModuleProgress(userID, moduleID)
	if err != nil {
		return err
	}
	if !mp.AllComplete {
		return nil
	}

	latest, err := s.SubmissionRepo.LatestStatusByModule(userID, moduleID)
	if err != nil {
		return err
	}
	resources, err := s.ResourceRepo.FindByModule(moduleID)
	if err != nil {
		return err
	}
	for _, resource := range resources {
		if resource.RequiresUpload && latest[resource.ID] != model.SubmissionApproved {
			return nil
		}
	}

	now := time.Now()
	promoted := false

	completion, err := s.ModuleCompletionRepo.FindByUserAndModule(userID, moduleID)
	switch {
	case err == gorm.ErrRecordNotFound:
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			completion = &model.ModuleCompletion{
				UserID:         userID,
				ModuleID:       moduleID,
				PathwayID:      pathwayID,
				ApprovalStatus: model.ApprovalApproved,
				CompletedAt:    now,
				ReviewedBy:     &reviewerID,
				ReviewedAt:     &now,
			}
			if err := repository.NewModuleCompletionRepository(tx).Create(completion); err != nil {
				return err
			}
			return s.Progress.RecomputePathwayProgress(tx, userID, pathwayID)
		})
		if err != nil {
			return err
		}
		promoted = true

	case err != nil:
		return err

	case completion.ApprovalStatus == model.ApprovalPending:
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			rows, err := repository.NewModuleCompletionRepository(tx).TransitionStatus(completion.ID,
				model.ApprovalPending, model.ApprovalApproved,
				map[string]interface{}{
					"reviewed_by": reviewerID,
					"reviewed_at": now,
				})
			if err != nil {
				return err
			}
			if rows == 0 {
				return nil
			}
			promoted = true
			return s.Progress.RecomputePathwayProgress(tx, userID, pathwayID)
		})
		if err != nil {
			return err
		}
	}

	if promoted {
		monitoring.WorkflowTransitions.WithLabelValues("module_auto_approved").Inc()
		s.checkAchievements(userID)
		s.Progress.InvalidateCache(ctx, userID)
		s.Notifications.Emit(EventModuleApproved, EventPayload{
			UserID:    userID,
			ModuleID:  moduleID,
			PathwayID: pathwayID,
			Details:   map[string]interface{}{"reviewerId": reviewerID, "auto": true},
		})
	}
	return nil
}

func (s *ApprovalService) recordActivity(userID uint) {
	if s.Achievements == nil {
		return
	}
	if err := s.Achievements.RecordActivity(userID); err != nil {
		logger.Log.Warn("streak update failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

func (s *ApprovalService) checkAchievements(userID uint) {
	if s.Achievements == nil {
		return
	}
	if err := s.Achievements.CheckAndAward(userID); err != nil {
		logger.Log.Warn("achievement check failed", zap.Uint("userId", userID), zap.Error(err))
	}
}
