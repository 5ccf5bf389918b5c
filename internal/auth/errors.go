package auth

import (
	"errors"
	"fmt"

	"github.com/hyperjump/findly/internal/client"
)

// User-facing messages.
const (
	MsgAuthFailed     = "Authentication failed"
	MsgNetwork        = "Network error. Please try again."
	MsgAccountCreated = "Account created! Please login."
)

// ErrBusy is returned when a submission is already in flight on the controller.
var ErrBusy = errors.New("auth: a submission is already in progress")

// Kind classifies a failed submission.
type Kind int

const (
	// KindValidation means a required field was missing or invalid; nothing was sent.
	KindValidation Kind = iota + 1
	// KindAuth means the service answered with a non-2xx status.
	KindAuth
	// KindNetwork means the request never completed or the response was unreadable.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a failed submission with the message to show inline on the form.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the inline message for err, or "" when err is nil.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	if errors.Is(err, ErrBusy) {
		return "Processing..."
	}
	return err.Error()
}

// shapeError maps client errors onto form errors: server detail when present, otherwise a
// generic message that keeps HTTP and transport failures distinguishable.
func shapeError(err error) *Error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Detail
		if msg == "" {
			msg = MsgAuthFailed
		}
		return &Error{Kind: KindAuth, Message: msg, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: MsgNetwork, Err: err}
}
