// Package apperror carries domain errors from the workflow layer to the HTTP
// adapter, which maps them to status codes and the response envelope.
package apperror

import (
	"errors"
	"net/http"
)

// AppError is a workflow failure with the HTTP status it should surface as.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// StatusOf returns the HTTP status an error maps to. Errors that are not
// AppErrors are unclassified and map to 500.
func StatusOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
