package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrProfileNotFound is returned when a user profile document is missing.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProductionNotFound is returned when a production is not found.
	ErrProductionNotFound = errors.New("production not found")
	// ErrRequirementNotFound is returned when a requirement is not found.
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrAssignmentNotFound is returned when an assignment is not found.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotOwner is returned when a user touches a document they do not own.
	ErrNotOwner = errors.New("not the owner of this resource")
	// ErrInvalidRole is returned for a role outside the three known roles.
	ErrInvalidRole = errors.New("invalid role")
	// ErrRoleForbidden is returned when the caller's role may not perform the operation.
	ErrRoleForbidden = errors.New("role not allowed to perform this operation")
	// ErrInvalidStatusTransition is returned for a status change outside the lifecycle.
	ErrInvalidStatusTransition = errors.New("invalid production status transition")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PROFILE_NOT_FOUND")
	case errors.Is(err, ErrProductionNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCTION_NOT_FOUND")
	case errors.Is(err, ErrRequirementNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "REQUIREMENT_NOT_FOUND")
	case errors.Is(err, ErrAssignmentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ASSIGNMENT_NOT_FOUND")
	case errors.Is(err, ErrNotificationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOTIFICATION_NOT_FOUND")
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_OWNER")
	case errors.Is(err, ErrRoleForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ROLE_FORBIDDEN")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrInvalidStatusTransition):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS_TRANSITION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
