package controller

import (
	"errors"
	"net/http"

	"bootcamp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// renderWorkflowError maps service errors onto the HTTP surface. Workflow
// conflicts are 409 so clients can distinguish "fix your state and retry"
// from plain bad requests.
func renderWorkflowError(ctx *gin.Context, err error) {
	var incomplete *util.IncompleteModuleError
	var invalid *util.InvalidTransitionError
	var storage *util.StorageError

	switch {
	case errors.As(err, &incomplete):
		util.ErrorWithData(ctx, http.StatusConflict, incomplete.Error(), incomplete)

	case errors.As(err, &invalid):
		util.Error(ctx, http.StatusConflict, invalid.Error())

	case errors.Is(err, util.ErrConcurrentModification):
		util.Error(ctx, http.StatusConflict, err.Error())

	case errors.Is(err, util.ErrMissingFeedback),
		errors.Is(err, util.ErrMissingReviewer),
		errors.Is(err, util.ErrInvalidReviewStatus),
		errors.Is(err, util.ErrUploadNotAccepted),
		errors.Is(err, util.ErrFileTypeNotAllowed),
		errors.Is(err, util.ErrFileTooLarge):
		util.BadRequest(ctx, err.Error())

	case errors.Is(err, util.ErrNotOwner):
		util.Forbidden(ctx)

	case errors.Is(err, util.ErrPathwayNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrResourceNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrCompletionNotFound):
		util.NotFound(ctx)

	case errors.As(err, &storage):
		util.Error(ctx, http.StatusBadGateway, "file storage unavailable, nothing was recorded")

	default:
		util.LogInternalError(ctx, err)
	}
}
