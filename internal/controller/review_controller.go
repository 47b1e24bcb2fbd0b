package controller

import (
	"strconv"

	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/service"
	"bootcamp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ReviewController is the instructor surface: the review queue,
// per-submission decisions and module approval.
type ReviewController struct {
	ApprovalService *service.ApprovalService
	ProgressService *service.ProgressService
}

func NewReviewController(approvalService *service.ApprovalService, progressService *service.ProgressService) *ReviewController {
	return &ReviewController{
		ApprovalService: approvalService,
		ProgressService: progressService,
	}
}

// PendingQueue godoc
// @Summary Unreviewed submissions, oldest first
// @Tags review
// @Produce json
// @Security ApiKeyAuth
// @Param pathwayId query string false "Filter by pathway"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/review/queue [get]
func (c *ReviewController) PendingQueue(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total, rows, err := c.ApprovalService.SubmissionRepo.ListPending(ctx.Query("pathwayId"), limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:   rows,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// swagger:model ReviewSubmissionRequest
type ReviewSubmissionRequest struct {
	Status   string `json:"status" binding:"required,oneof=approved rejected"`
	Grade    string `json:"grade" binding:"omitempty,oneof=pass fail"`
	Comments string `json:"comments"`
}

// ReviewSubmission godoc
// @Summary Approve or reject one uploaded submission
// @Description Approving the last outstanding upload of an otherwise
// @Description complete module auto-approves the module.
// @Tags review
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Submission id"
// @Param body body ReviewSubmissionRequest true "Decision"
// @Success 200 {object} util.Response{data=model.ResourceSubmission}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/submissions/{id}/review [post]
func (c *ReviewController) ReviewSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req ReviewSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.ApprovalService.ReviewSubmission(
		ctx.Request.Context(),
		claims.UserID,
		ctx.Param("id"),
		model.SubmissionStatus(req.Status),
		model.Grade(req.Grade),
		req.Comments,
	)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// swagger:model ModuleDecisionRequest
type ModuleDecisionRequest struct {
	Comments string `json:"comments"`
}

// ApproveModule godoc
// @Summary Approve a student's pending module
// @Tags review
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "Student id"
// @Param moduleId path string true "Module id"
// @Param body body ModuleDecisionRequest false "Optional comments"
// @Success 200 {object} util.Response{data=model.ModuleCompletion}
// @Failure 409 {object} util.Response
// @Router /api/admin/students/{userId}/modules/{moduleId}/approve [post]
func (c *ReviewController) ApproveModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	studentID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	var req ModuleDecisionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	completion, err := c.ApprovalService.Approve(ctx.Request.Context(), claims.UserID, uint(studentID), ctx.Param("moduleId"), req.Comments)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// RejectModule godoc
// @Summary Reject a student's pending module with mandatory feedback
// @Tags review
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "Student id"
// @Param moduleId path string true "Module id"
// @Param body body ModuleDecisionRequest true "Feedback (required)"
// @Success 200 {object} util.Response{data=model.ModuleCompletion}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/students/{userId}/modules/{moduleId}/reject [post]
func (c *ReviewController) RejectModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	studentID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	var req ModuleDecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	completion, err := c.ApprovalService.Reject(ctx.Request.Context(), claims.UserID, uint(studentID), ctx.Param("moduleId"), req.Comments)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// StudentModuleState godoc
// @Summary A student's module state, as seen by an instructor
// @Tags review
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "Student id"
// @Param moduleId path string true "Module id"
// @Success 200 {object} util.Response{data=service.ModuleState}
// @Failure 404 {object} util.Response
// @Router /api/admin/students/{userId}/modules/{moduleId}/state [get]
func (c *ReviewController) StudentModuleState(ctx *gin.Context) {
	studentID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	state, err := c.ProgressService.GetModuleState(uint(studentID), ctx.Param("moduleId"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, state)
}
