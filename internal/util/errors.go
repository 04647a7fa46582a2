package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailExists          = errors.New("email already registered in this company")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrCourseNotFound       = errors.New("course not found")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrClassNotFound        = errors.New("class not found")
	ErrSimulationNotFound   = errors.New("simulation not found")
	ErrNoSessionTurns       = errors.New("no session turns for thread")
	ErrIncompleteScores     = errors.New("final turn is missing required score fields")
	ErrRunTimeout           = errors.New("assistant run did not complete in time")
	ErrRunFailed            = errors.New("assistant run failed")
	ErrAssistantUnavailable = errors.New("assistant provider unavailable")
	ErrResetTokenInvalid    = errors.New("password reset token invalid or expired")
	ErrDeliveryFailed       = errors.New("mail delivery failed")
)
