package controller

import (
	"bootcamp_backend/internal/service"
	"bootcamp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	ApprovalService *service.ApprovalService
}

func NewProgressController(progressService *service.ProgressService, approvalService *service.ApprovalService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		ApprovalService: approvalService,
	}
}

// ListPathways godoc
// @Summary Pathway catalog
// @Tags pathways
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Pathway}
// @Router /api/pathways [get]
func (c *ProgressController) ListPathways(ctx *gin.Context) {
	pathways, err := c.ProgressService.ListPathways()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, pathways)
}

// GetPathway godoc
// @Summary Pathway detail with per-module status and the next module
// @Tags pathways
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Pathway id"
// @Success 200 {object} util.Response{data=service.PathwayDetail}
// @Failure 404 {object} util.Response
// @Router /api/pathways/{id} [get]
func (c *ProgressController) GetPathway(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	detail, err := c.ProgressService.GetPathwayDetail(claims.UserID, ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// GetPathwayProgress godoc
// @Summary Pathway rollup: approved modules only
// @Tags pathways
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Pathway id"
// @Success 200 {object} util.Response{data=service.PathwayProgressResult}
// @Failure 404 {object} util.Response
// @Router /api/pathways/{id}/progress [get]
func (c *ProgressController) GetPathwayProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.GetPathwayState(claims.UserID, ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// GetModuleState godoc
// @Summary Module approval status with completion percentage
// @Tags modules
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Module id"
// @Success 200 {object} util.Response{data=service.ModuleState}
// @Failure 404 {object} util.Response
// @Router /api/modules/{id}/state [get]
func (c *ProgressController) GetModuleState(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	state, err := c.ProgressService.GetModuleState(claims.UserID, ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// swagger:model SubmitModuleRequest
type SubmitModuleRequest struct {
	TimeSpentMinutes int `json:"timeSpentMinutes"`
}

// SubmitModule godoc
// @Summary Submit a completed module for instructor review
// @Description Fails with 409 and the missing resource ids when the
// @Description module gate is not met.
// @Tags modules
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Module id"
// @Param body body SubmitModuleRequest false "Submission details"
// @Success 200 {object} util.Response{data=model.ModuleCompletion}
// @Failure 409 {object} util.Response
// @Router /api/modules/{id}/submit [post]
func (c *ProgressController) SubmitModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req SubmitModuleRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	completion, err := c.ApprovalService.SubmitForReview(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.TimeSpentMinutes)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// Dashboard godoc
// @Summary Student dashboard: pathway cards, totals and streak
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DashboardData}
// @Router /api/dashboard [get]
func (c *ProgressController) Dashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	data, err := c.ProgressService.Dashboard(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}
