// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Generic codes mirror HTTP status semantics, domain codes
// name the operation that failed.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "Case not found."
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeNotReady         = "not_ready"

	// Domain-specific:
	ErrCodeInvalidCase     = "invalid_case"
	ErrCodeInvalidStatus   = "invalid_status"
	ErrCodeTransition      = "transition_not_allowed"
	ErrCodeInvalidEntry    = "invalid_entry"
	ErrCodeCreateFailed    = "create_failed"
	ErrCodeListFailed      = "list_failed"
	ErrCodeUpdateFailed    = "update_failed"
	ErrCodeDashboardFailed = "dashboard_failed"
)
