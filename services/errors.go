// Package services talks to the external auth and data backend.
// File: services/errors.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// BackendError is the single failure kind surfaced to users: the backend's own message.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// IsAuthRejection reports whether the backend refused the request outright (4xx),
// as opposed to a transport failure or server error worth retrying.
func (e *BackendError) IsAuthRejection() bool {
	return e.Status >= 400 && e.Status < 500
}

// ErrorMessage extracts the user-facing text of any error returned by this package.
func ErrorMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

// errorBody covers the error shapes of the auth and REST endpoints.
type errorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

// decodeBackendError turns a non-2xx response body into a BackendError.
func decodeBackendError(status int, body []byte) *BackendError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		for _, m := range []string{eb.Msg, eb.Message, eb.ErrorDescription, eb.Error} {
			if m != "" {
				return &BackendError{Status: status, Message: m}
			}
		}
	}
	text := http.StatusText(status)
	if text == "" {
		text = fmt.Sprintf("request failed with status %d", status)
	}
	return &BackendError{Status: status, Message: text}
}

// fromPgError maps a database error onto a BackendError carrying the server message.
func fromPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &BackendError{Status: http.StatusBadRequest, Message: pgErr.Message}
	}
	return &BackendError{Message: err.Error()}
}
