package util

import (
	"errors"
	"fmt"

	"bootcamp_backend/internal/model"
)

var (
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrPathwayNotFound    = errors.New("pathway not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrCompletionNotFound = errors.New("resource completion not found")

	ErrUploadNotAccepted   = errors.New("resource does not accept file uploads")
	ErrFileTypeNotAllowed  = errors.New("file type not accepted for this resource")
	ErrFileTooLarge        = errors.New("file exceeds the resource size limit")
	ErrInvalidReviewStatus = errors.New("review status must be approved or rejected")
	ErrNotOwner            = errors.New("permission denied")
	ErrMissingReviewer     = errors.New("reviewer identity required")

	// ErrMissingFeedback is returned when a rejection carries no review
	// comments. A rejection without feedback is a usage error, not a
	// policy decision.
	ErrMissingFeedback = errors.New("rejection requires review comments")

	// ErrConcurrentModification means a guarded status update observed a
	// row that changed underneath it. The caller may retry with fresh
	// state; the workflow never retries on its own.
	ErrConcurrentModification = errors.New("record was modified concurrently")
)

// IncompleteModuleError is returned when a module is submitted for review
// before every resource is done. It carries the unfinished resource ids so
// the caller can surface them verbatim to the student.
type IncompleteModuleError struct {
	ModuleID           string   `json:"moduleId"`
	MissingResourceIDs []string `json:"missingResourceIds"`
	MissingUploadIDs   []string `json:"missingUploadIds"`
}

func (e *IncompleteModuleError) Error() string {
	return fmt.Sprintf("module %s is incomplete: %d resources unfinished, %d uploads missing",
		e.ModuleID, len(e.MissingResourceIDs), len(e.MissingUploadIDs))
}

// InvalidTransitionError marks an approval transition that is not legal
// from the row's current state, e.g. approving a module that was never
// submitted. It indicates a caller bug and is logged at warn level.
type InvalidTransitionError struct {
	From model.ApprovalStatus `json:"from"`
	To   model.ApprovalStatus `json:"to"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid approval transition %s -> %s", e.From, e.To)
}

// StorageError wraps a failure from the object storage collaborator. The
// ledger is left untouched when this is returned: nothing was recorded.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
