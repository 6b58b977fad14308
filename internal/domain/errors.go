package domain

import "errors"

// Failure taxonomy surfaced by the service layer. The HTTP layer is the only
// place these are translated to status codes.
var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidDueDate       = errors.New("due date cannot be in the past")
	ErrValidationFailed     = errors.New("validation failed")
)
