package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an operational, user-facing error with a stable name and an
// HTTP-mappable status code. Anything that is not an APIError is treated as
// an unexpected internal error and never surfaced to clients in detail.
type APIError struct {
	Name          string
	StatusCode    int
	Description   string
	IsOperational bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Description)
}

func New(statusCode int, description string) *APIError {
	return &APIError{
		Name:          http.StatusText(statusCode),
		StatusCode:    statusCode,
		Description:   description,
		IsOperational: true,
	}
}

func BadRequest(description string) *APIError {
	return New(http.StatusBadRequest, description)
}

func NotFound(description string) *APIError {
	return New(http.StatusNotFound, description)
}

func Forbidden(description string) *APIError {
	return New(http.StatusForbidden, description)
}

func Unauthorized(description string) *APIError {
	return New(http.StatusUnauthorized, description)
}

// From extracts an APIError from the chain, or wraps err as a non-operational
// internal error whose description is safe to return to clients.
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Name:          http.StatusText(http.StatusInternalServerError),
		StatusCode:    http.StatusInternalServerError,
		Description:   http.StatusText(http.StatusInternalServerError),
		IsOperational: false,
	}
}
