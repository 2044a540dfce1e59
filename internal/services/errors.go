package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProblemNotFound = errors.New("problem not found")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrNameTaken        = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrProblemNameTaken = errors.New("problem name already exists")

	ErrConfirmationPending = errors.New("a confirmation email was already sent")
	ErrBadEmailToken       = errors.New("invalid or missing email token")
	ErrEmailUnbound        = errors.New("no email bound to this account")

	ErrValidationFailed = errors.New("validation failed")
)

// PermissionError carries the who/what/why of a denied operation so
// handlers can log it while still mapping to ErrForbidden via Unwrap.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}
