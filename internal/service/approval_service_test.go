package service

import (
	"context"
	"testing"
	"time"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitForReview_IncompleteModuleIsRejectedWithoutARow(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	createResource(t, db, "pw", "m1", "r2", 1, true)

	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)

	var incomplete *util.IncompleteModuleError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "m1", incomplete.ModuleID)
	assert.Equal(t, []string{"r2"}, incomplete.MissingResourceIDs)
	assert.Equal(t, []string{"r2"}, incomplete.MissingUploadIDs)

	// The gate failing must leave no trace.
	var count int64
	db.Model(&model.ModuleCompletion{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitForReview_CreatesPendingAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	first, err := s.SubmitForReview(context.Background(), user.ID, "m1", 45)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, first.ApprovalStatus)
	assert.Equal(t, 45, first.TimeSpentMinutes)

	second, err := s.SubmitForReview(context.Background(), user.ID, "m1", 99)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-submitting a pending module must not create a second row")
	assert.Equal(t, model.ApprovalPending, second.ApprovalStatus)

	var count int64
	db.Model(&model.ModuleCompletion{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSubmitForReview_ApprovedModuleCannotBeResubmitted(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)
	_, err = s.Approve(context.Background(), reviewer.ID, user.ID, "m1", "good work")
	require.NoError(t, err)

	_, err = s.SubmitForReview(context.Background(), user.ID, "m1", 10)

	var invalid *util.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.ApprovalApproved, invalid.From)
	assert.Equal(t, model.ApprovalPending, invalid.To)
}

func TestSubmitForReview_ResubmissionAfterRejectionClearsReview(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)
	_, err = s.Reject(context.Background(), reviewer.ID, user.ID, "m1", "needs more depth")
	require.NoError(t, err)

	resubmitted, err := s.SubmitForReview(context.Background(), user.ID, "m1", 25)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, resubmitted.ApprovalStatus)
	assert.Equal(t, 25, resubmitted.TimeSpentMinutes)
	assert.Nil(t, resubmitted.ReviewedBy, "prior review must be cleared on resubmission")
	assert.Nil(t, resubmitted.ReviewedAt)
	assert.Empty(t, resubmitted.ReviewComments)
}

func TestApprove_RequiresReviewerAndAPendingRow(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)

	_, err := s.Approve(context.Background(), 0, user.ID, "m1", "")
	assert.ErrorIs(t, err, util.ErrMissingReviewer)

	_, err = s.Approve(context.Background(), 7, user.ID, "m1", "")
	var invalid *util.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.ApprovalNotSubmitted, invalid.From)
	assert.Equal(t, model.ApprovalApproved, invalid.To)
}

func TestApprove_RecomputesPathwayInTheSameTransaction(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	createModule(t, db, "pw", "m2", 1)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 60)
	require.NoError(t, err)

	completion, err := s.Approve(context.Background(), reviewer.ID, user.ID, "m1", "solid")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, completion.ApprovalStatus)
	require.NotNil(t, completion.ReviewedBy)
	assert.Equal(t, reviewer.ID, *completion.ReviewedBy)
	assert.Equal(t, "solid", completion.ReviewComments)

	progress, err := s.Progress.ProgressRepo.FindByUserAndPathway(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedModules)
	assert.Equal(t, 50, progress.ProgressPercentage)
	assert.Equal(t, 60, progress.TotalTimeSpentMinutes)
}

func TestApprove_IsIdempotentOnApprovedRows(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	other := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)

	first, err := s.Approve(context.Background(), reviewer.ID, user.ID, "m1", "ok")
	require.NoError(t, err)

	// A second reviewer's duplicate decision is a no-op; the first
	// decision stands untouched.
	second, err := s.Approve(context.Background(), other.ID, user.ID, "m1", "also ok")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.ReviewedBy)
	assert.Equal(t, reviewer.ID, *second.ReviewedBy)
	assert.Equal(t, "ok", second.ReviewComments)
}

func TestApprove_RejectedRowCannotBeApproved(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)
	_, err = s.Reject(context.Background(), reviewer.ID, user.ID, "m1", "redo it")
	require.NoError(t, err)

	_, err = s.Approve(context.Background(), reviewer.ID, user.ID, "m1", "")
	var invalid *util.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.ApprovalRejected, invalid.From)
}

func TestReject_RequiresFeedback(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)

	_, err = s.Reject(context.Background(), reviewer.ID, user.ID, "m1", "   ")
	assert.ErrorIs(t, err, util.ErrMissingFeedback)

	state, err := s.Progress.GetModuleState(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, state.ApprovalStatus, "failed rejection must not move the row")
}

func TestReject_DoesNotAdvancePathwayAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)

	rejected, err := s.Reject(context.Background(), reviewer.ID, user.ID, "m1", "missing tests")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, rejected.ApprovalStatus)
	assert.Equal(t, "missing tests", rejected.ReviewComments)

	again, err := s.Reject(context.Background(), reviewer.ID, user.ID, "m1", "still missing tests")
	require.NoError(t, err)
	assert.Equal(t, "missing tests", again.ReviewComments, "duplicate rejection keeps the original feedback")

	pp, err := s.Progress.PathwayProgress(user.ID, "pw")
	require.NoError(t, err)
	assert.Zero(t, pp.CompletedModules)
}

func TestReviewSubmission_ValidatesStatusAndMarksReviewed(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, true)
	completion := completeResource(t, db, user.ID, r1, 1)
	submission := createSubmission(t, db, user.ID, r1, completion.ID, model.SubmissionUploaded)

	_, err := s.ReviewSubmission(context.Background(), reviewer.ID, submission.ID, "graded", model.GradePass, "")
	assert.ErrorIs(t, err, util.ErrInvalidReviewStatus)

	reviewed, err := s.ReviewSubmission(context.Background(), reviewer.ID, submission.ID, model.SubmissionApproved, model.GradePass, "well done")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionApproved, reviewed.Status)
	assert.Equal(t, model.GradePass, reviewed.Grade)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, reviewer.ID, *reviewed.ReviewedBy)

	var fresh model.ResourceCompletion
	require.NoError(t, db.First(&fresh, "id = ?", completion.ID).Error)
	assert.Equal(t, model.StatusReviewed, fresh.Status)
}

func TestReviewSubmission_AutoApprovesCompleteModule(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	r2 := createResource(t, db, "pw", "m1", "r2", 1, true)

	completeResource(t, db, user.ID, r1, 0)
	completion := completeResource(t, db, user.ID, r2, 1)
	submission := createSubmission(t, db, user.ID, r2, completion.ID, model.SubmissionUploaded)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 30)
	require.NoError(t, err)

	_, err = s.ReviewSubmission(context.Background(), reviewer.ID, submission.ID, model.SubmissionApproved, model.GradePass, "")
	require.NoError(t, err)

	state, err := s.Progress.GetModuleState(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, state.ApprovalStatus,
		"approving the last outstanding upload must promote the pending module")

	progress, err := s.Progress.ProgressRepo.FindByUserAndPathway(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedModules)
}

func TestReviewSubmission_AutoApprovalWaitsForEveryUpload(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, true)
	r2 := createResource(t, db, "pw", "m1", "r2", 1, true)

	c1 := completeResource(t, db, user.ID, r1, 1)
	c2 := completeResource(t, db, user.ID, r2, 1)
	s1 := createSubmission(t, db, user.ID, r1, c1.ID, model.SubmissionUploaded)
	createSubmission(t, db, user.ID, r2, c2.ID, model.SubmissionUploaded)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 30)
	require.NoError(t, err)

	_, err = s.ReviewSubmission(context.Background(), reviewer.ID, s1.ID, model.SubmissionApproved, model.GradePass, "")
	require.NoError(t, err)

	state, err := s.Progress.GetModuleState(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, state.ApprovalStatus,
		"one approved upload of two must not promote the module")
}

func TestReviewSubmission_AutoApprovalNeverOverridesRejection(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, true)
	completion := completeResource(t, db, user.ID, r1, 1)
	submission := createSubmission(t, db, user.ID, r1, completion.ID, model.SubmissionUploaded)

	_, err := s.SubmitForReview(context.Background(), user.ID, "m1", 30)
	require.NoError(t, err)
	_, err = s.Reject(context.Background(), reviewer.ID, user.ID, "m1", "overall structure is off")
	require.NoError(t, err)

	_, err = s.ReviewSubmission(context.Background(), reviewer.ID, submission.ID, model.SubmissionApproved, model.GradePass, "this file is fine")
	require.NoError(t, err)

	state, err := s.Progress.GetModuleState(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, state.ApprovalStatus,
		"an explicit module rejection stands until the student resubmits")
}

func TestApprovalWorkflow_FullPathwayRoundTrip(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	createModule(t, db, "pw", "m2", 1)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	r2 := createResource(t, db, "pw", "m2", "r2", 0, true)

	ctx := context.Background()

	// Module 1: complete, submit, approve.
	completeResource(t, db, user.ID, r1, 0)
	_, err := s.SubmitForReview(ctx, user.ID, "m1", 40)
	require.NoError(t, err)
	_, err = s.Approve(ctx, reviewer.ID, user.ID, "m1", "")
	require.NoError(t, err)

	pp, err := s.Progress.PathwayProgress(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 50, pp.Percent)

	// Module 2: submit, get rejected, fix, resubmit, get approved.
	c2 := completeResource(t, db, user.ID, r2, 1)
	createSubmission(t, db, user.ID, r2, c2.ID, model.SubmissionUploaded)

	_, err = s.SubmitForReview(ctx, user.ID, "m2", 80)
	require.NoError(t, err)
	_, err = s.Reject(ctx, reviewer.ID, user.ID, "m2", "resize the output layer")
	require.NoError(t, err)

	pp, err = s.Progress.PathwayProgress(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 50, pp.Percent, "a rejection must not advance the pathway")

	_, err = s.SubmitForReview(ctx, user.ID, "m2", 95)
	require.NoError(t, err)
	_, err = s.Approve(ctx, reviewer.ID, user.ID, "m2", "fixed")
	require.NoError(t, err)

	pp, err = s.Progress.PathwayProgress(user.ID, "pw")
	require.NoError(t, err)
	assert.Equal(t, 100, pp.Percent)

	progress, err := s.Progress.ProgressRepo.FindByUserAndPathway(user.ID, "pw")
	require.NoError(t, err)
	assert.NotNil(t, progress.CompletedAt)
	assert.Equal(t, 40+95, progress.TotalTimeSpentMinutes)
}

func TestApprove_LosingToACompetingApproveIsANoOp(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	other := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	submitted, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)

	// A competing approver's decision lands between this reviewer's read
	// and write.
	rows, err := s.ModuleCompletionRepo.TransitionStatus(submitted.ID,
		model.ApprovalPending, model.ApprovalApproved,
		map[string]interface{}{"reviewed_by": other.ID, "reviewed_at": time.Now(), "review_comments": "got here first"})
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	got, err := s.Approve(context.Background(), reviewer.ID, user.ID, "m1", "late decision")
	require.NoError(t, err, "losing an approve race to another approve must not error")
	assert.Equal(t, model.ApprovalApproved, got.ApprovalStatus)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, other.ID, *got.ReviewedBy, "the winner's attribution stands")
	assert.Equal(t, "got here first", got.ReviewComments)
}

func TestApprove_StaleDecisionAgainstRejectedRowFailsCleanly(t *testing.T) {
	db := newTestDB(t)
	s := newApprovalService(db)
	user := createUser(t, db, model.Student)
	reviewer := createUser(t, db, model.Instructor)
	createPathway(t, db, "pw")
	createModule(t, db, "pw", "m1", 0)
	r1 := createResource(t, db, "pw", "m1", "r1", 0, false)
	completeResource(t, db, user.ID, r1, 0)

	submitted, err := s.SubmitForReview(context.Background(), user.ID, "m1", 10)
	require.NoError(t, err)

	// Another actor moves the row between this reviewer's read and write.
	rows, err := s.ModuleCompletionRepo.TransitionStatus(submitted.ID,
		model.ApprovalPending, model.ApprovalRejected,
		map[string]interface{}{"review_comments": "raced you", "reviewed_by": reviewer.ID, "reviewed_at": time.Now()})
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, err = s.Approve(context.Background(), reviewer.ID, user.ID, "m1", "")
	var invalid *util.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	state, err := s.Progress.GetModuleState(user.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, state.ApprovalStatus, "the winning decision must stand")
}
