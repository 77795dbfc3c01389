// Package services defines the business logic for cases, AI drafting actions,
// the provider directory and dashboards. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer. The drafting actions are the exception: they map
// every failure to a plain string themselves (see ActionResult).
package services

import "errors"

// Case-related errors.
var (
	// ErrCaseNotFound indicates that the requested case does not exist or is
	// not visible to the current user.
	ErrCaseNotFound = errors.New("case not found")

	// ErrInvalidCase is returned when a submission fails intake validation
	// (unknown category, description too short). Wrapped errors carry the
	// specific reason.
	ErrInvalidCase = errors.New("invalid case")

	// ErrInvalidStatus is returned for a status outside new/in-progress/resolved.
	ErrInvalidStatus = errors.New("invalid case status")

	// ErrTransitionNotAllowed is returned in strict mode when a status change
	// would move a case backwards.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")

	// ErrStatusConflict is returned in strict mode when another writer changed
	// the status between the read and the conditional write.
	ErrStatusConflict = errors.New("case status changed concurrently")

	// ErrKeyInUse is returned when an Idempotency-Key is held by a record
	// whose case can no longer be read.
	ErrKeyInUse = errors.New("idempotency key already used")

	// ErrForbidden is returned when the caller's role may not perform the
	// operation.
	ErrForbidden = errors.New("operation not permitted for this role")
)

// Directory errors.
var (
	// ErrInvalidEntry is returned when a directory registration is missing
	// required fields. Wrapped errors name the field.
	ErrInvalidEntry = errors.New("invalid directory entry")

	// ErrDuplicateEntry is returned when the email is already registered.
	ErrDuplicateEntry = errors.New("email already registered")
)

// ErrUnknownDashboard is returned for a dashboard kind that does not exist.
var ErrUnknownDashboard = errors.New("unknown dashboard")
