package shopapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend, carrying whatever the
// server said about the failure.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (status %d, code %s)", msg, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// UserMessage returns the server-provided message when present, else a
// generic notice suitable for display.
func (e *Error) UserMessage() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// IsAuthFailure reports whether err is a credential problem (invalid
// credentials or an expired/revoked token).
func IsAuthFailure(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is a missing-entity response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsValidation reports whether err is a business/validation rejection such
// as insufficient stock.
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// parseError builds an *Error from an error response body. The backend is
// not consistent about its error envelope, so several field names are
// accepted.
func parseError(body []byte, statusCode int) error {
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return &Error{
			StatusCode: statusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}

	return &Error{
		StatusCode: statusCode,
		Code:       errResp.Code,
		Message:    msg,
	}
}
