package controller

import (
	"bootcamp_backend/internal/service"
	"bootcamp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	ResourceService *service.ResourceService
}

func NewResourceController(resourceService *service.ResourceService) *ResourceController {
	return &ResourceController{ResourceService: resourceService}
}

// ListModuleResources godoc
// @Summary A module's resources with the caller's progress
// @Tags resources
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Module id"
// @Success 200 {object} util.Response{data=[]service.ResourceView}
// @Router /api/modules/{id}/resources [get]
func (c *ResourceController) ListModuleResources(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	views, err := c.ResourceService.ListModuleResources(claims.UserID, ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// StartResource godoc
// @Summary Mark a resource as started
// @Tags resources
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource id"
// @Success 200 {object} util.Response{data=model.ResourceCompletion}
// @Failure 404 {object} util.Response
// @Router /api/resources/{id}/start [post]
func (c *ResourceController) StartResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	completion, err := c.ResourceService.Start(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// swagger:model ResourceProgressRequest
type ResourceProgressRequest struct {
	Percent          int `json:"percent" binding:"min=0,max=100"`
	TimeSpentMinutes int `json:"timeSpentMinutes" binding:"min=0"`
}

// UpdateResourceProgress godoc
// @Summary Record partial progress on a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource id"
// @Param body body ResourceProgressRequest true "Progress"
// @Success 200 {object} util.Response{data=model.ResourceCompletion}
// @Router /api/resources/{id}/progress [put]
func (c *ResourceController) UpdateResourceProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req ResourceProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	completion, err := c.ResourceService.UpdateProgress(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.Percent, req.TimeSpentMinutes)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// swagger:model CompleteResourceRequest
type CompleteResourceRequest struct {
	TimeSpentMinutes int `json:"timeSpentMinutes" binding:"min=0"`
}

// CompleteResource godoc
// @Summary Mark a resource finished
// @Tags resources
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource id"
// @Param body body CompleteResourceRequest false "Completion details"
// @Success 200 {object} util.Response{data=model.ResourceCompletion}
// @Router /api/resources/{id}/complete [post]
func (c *ResourceController) CompleteResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req CompleteResourceRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	completion, err := c.ResourceService.Complete(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.TimeSpentMinutes)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// UploadSubmission godoc
// @Summary Upload a submission file for an upload-requiring resource
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource id"
// @Param file formData file true "Submission file"
// @Success 201 {object} util.Response{data=model.ResourceSubmission}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/resources/{id}/submissions [post]
func (c *ResourceController) UploadSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	submission, err := c.ResourceService.Upload(
		ctx.Request.Context(),
		claims.UserID,
		ctx.Param("id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
		ctx.ClientIP(),
	)
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Created(ctx, submission)
}

// ListSubmissions godoc
// @Summary The caller's live submissions for a resource, newest first
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource id"
// @Success 200 {object} util.Response{data=[]model.ResourceSubmission}
// @Router /api/resources/{id}/submissions [get]
func (c *ResourceController) ListSubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	submissions, err := c.ResourceService.ListSubmissions(claims.UserID, ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}

// DownloadSubmission godoc
// @Summary Short-lived download link for a submission
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Submission id"
// @Success 200 {object} util.Response{data=object}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/submissions/{id}/download [get]
func (c *ResourceController) DownloadSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	url, err := c.ResourceService.SignedDownloadURL(ctx.Request.Context(), claims.UserID, claims.IsReviewer(), ctx.Param("id"))
	if err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// DeleteSubmission godoc
// @Summary Soft-delete a submission
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Submission id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/submissions/{id} [delete]
func (c *ResourceController) DeleteSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ResourceService.DeleteSubmission(ctx.Request.Context(), claims.UserID, claims.IsReviewer(), ctx.Param("id")); err != nil {
		renderWorkflowError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
