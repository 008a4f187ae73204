package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/livepeer/reframe-media/log"
	"github.com/xeipuuv/gojsonschema"
)

// Code is the uniform error-kind enum returned in every API error envelope.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeServer        Code = "SERVER_ERROR"
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
)

var codeStatus = map[Code]int{
	CodeValidation:      http.StatusBadRequest,
	CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeServer:          http.StatusInternalServerError,
}

// APIError is the uniform error envelope described for the job API:
// {code, message, details?}.
type APIError struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Status  int         `json:"-"`
	Err     error       `json:"-"`
}

func (e APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e APIError) Unwrap() error { return e.Err }

func newAPIError(code Code, msg string, err error, details interface{}) APIError {
	return APIError{Code: code, Message: msg, Status: codeStatus[code], Err: err, Details: details}
}

func NewValidationError(msg string, details interface{}) APIError {
	return newAPIError(CodeValidation, msg, nil, details)
}

func NewNotFoundError(msg string) APIError {
	return newAPIError(CodeNotFound, msg, nil, nil)
}

func NewConflictError(msg string) APIError {
	return newAPIError(CodeConflict, msg, nil, nil)
}

func NewRateLimitedError(msg string) APIError {
	return newAPIError(CodeRateLimited, msg, nil, nil)
}

func NewPayloadTooLargeError(msg string) APIError {
	return newAPIError(CodePayloadTooLarge, msg, nil, nil)
}

func NewServerError(msg string, err error) APIError {
	return newAPIError(CodeServer, msg, err, nil)
}

// writeHTTPError writes the uniform envelope and returns the APIError so
// callers can also log/wrap it.
func writeHTTPError(w http.ResponseWriter, apiErr APIError) APIError {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		log.LogNoRequestID("error writing HTTP error", "http_error_msg", apiErr.Message, "error", err)
	}
	return apiErr
}

func WriteHTTPValidationError(w http.ResponseWriter, msg string, details interface{}) APIError {
	return writeHTTPError(w, NewValidationError(msg, details))
}

func WriteHTTPNotFound(w http.ResponseWriter, msg string) APIError {
	return writeHTTPError(w, NewNotFoundError(msg))
}

func WriteHTTPConflict(w http.ResponseWriter, msg string) APIError {
	return writeHTTPError(w, NewConflictError(msg))
}

func WriteHTTPRateLimited(w http.ResponseWriter, msg string) APIError {
	return writeHTTPError(w, NewRateLimitedError(msg))
}

func WriteHTTPPayloadTooLarge(w http.ResponseWriter, msg string) APIError {
	return writeHTTPError(w, NewPayloadTooLargeError(msg))
}

func WriteHTTPInternalServerError(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, NewServerError(msg, err))
}

// WriteHTTPBadBodySchema flattens gojsonschema validation errors into a
// single VALIDATION_ERROR response with each failure listed in Details.
func WriteHTTPBadBodySchema(where string, w http.ResponseWriter, result []gojsonschema.ResultError) APIError {
	details := make([]string, 0, len(result))
	for _, re := range result {
		details = append(details, re.String())
	}
	msg := fmt.Sprintf("body validation error in %s", where)
	return writeHTTPError(w, NewValidationError(msg, details))
}

// UnretriableError marks an error as not worth retrying from the worker's
// retry loop (e.g. a malformed input will never succeed on retry).
type UnretriableError struct{ error }

// Unretriable also wraps the result in a *backoff.PermanentError, so
// backoff.Retry stops on it as well.
func Unretriable(err error) error { return backoff.Permanent(UnretriableError{err}) }

func (e UnretriableError) Unwrap() error { return e.error }

func IsUnretriable(err error) bool {
	return errors.As(err, &UnretriableError{})
}

type ObjectNotFoundError struct {
	msg   string
	cause error
}

func (e ObjectNotFoundError) Error() string { return e.msg }

func (e ObjectNotFoundError) Unwrap() error { return e.cause }

func NewObjectNotFoundError(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("object not found: %s: %s", msg, cause)
	} else {
		msg = fmt.Sprintf("object not found: %s", msg)
	}
	return UnretriableError{ObjectNotFoundError{msg: msg, cause: cause}}
}

func IsObjectNotFound(err error) bool {
	return errors.As(err, &ObjectNotFoundError{})
}

// joinDetails renders a slice of strings for embedding into an error message
// outside of the JSON envelope (e.g. CLI output).
func joinDetails(details []string) string {
	return strings.Join(details, "; ")
}
