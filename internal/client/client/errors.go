package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable         = errors.New("server unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrCredentialsRejected = errors.New("credentials rejected")
	ErrValidationFailed    = errors.New("validation failed")
	ErrRequestFailed       = errors.New("request failed")
)

// Generic messages shown when the server gives nothing better.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed. Please check your data."
	MsgRequestFailed      = "Request failed"
)

// APIError is a failed API call. Kind is one of the sentinels above and is
// matched by errors.Is; Message is safe to show to the user.
type APIError struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserMessage returns the text a view should show for err: the server's
// message when there is one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
