// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// draft owned by someone else. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a record with the same key already exists,
// such as a second submission row for one draft. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDraftNotFound is returned when a draft does not exist or has expired.
var ErrDraftNotFound = errors.New("draft not found")

// ErrSubmissionNotFound is returned when no submission was recorded for a draft.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrConfirmationNotFound is returned when a confirmation token is unknown,
// expired or was already used.
var ErrConfirmationNotFound = errors.New("confirmation not found")
