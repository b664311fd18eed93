package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodePreconditionFailed = "precondition_failed"
	ErrCodeInternal           = "internal_error"
)
