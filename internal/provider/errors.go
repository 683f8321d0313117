package provider

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Generation failures that carry no upstream status.
var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrNoImageData   = errors.New("no image data found in response")
	ErrNoImages      = errors.New("no images generated")
)

// Error is a classified provider failure.
type Error struct {
	Code    int
	Status  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "provider error"
}

func (e *Error) Unwrap() error { return e.Cause }

// RateLimited reports whether the failure is a quota or rate-limit signal.
func (e *Error) RateLimited() bool {
	return e.Code == http.StatusTooManyRequests ||
		e.Status == "RESOURCE_EXHAUSTED" ||
		strings.Contains(e.Message, "429") ||
		strings.Contains(e.Message, "Quota exceeded")
}

// Auth reports whether the credential was rejected.
func (e *Error) Auth() bool {
	return e.Code == http.StatusUnauthorized ||
		e.Code == http.StatusForbidden ||
		e.Status == "PERMISSION_DENIED" ||
		e.Status == "UNAUTHENTICATED" ||
		strings.Contains(e.Message, "403") ||
		strings.Contains(e.Message, "API key")
}

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	return err != nil && classify(err).RateLimited()
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return err != nil && classify(err).Auth()
}

// classify converts any error into an *Error, extracting code and status
// from genai API errors when present.
func classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromAPIError(*apiErrPtr, err)
	}

	return &Error{Message: err.Error(), Cause: err}
}

func fromAPIError(apiErr genai.APIError, cause error) *Error {
	msg := apiErr.Message
	if msg == "" {
		msg = cause.Error()
	}
	return &Error{
		Code:    apiErr.Code,
		Status:  apiErr.Status,
		Message: msg,
		Cause:   cause,
	}
}
