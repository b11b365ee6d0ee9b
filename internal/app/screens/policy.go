package screens

import (
	"context"
	"errors"

	"eventboard/internal/app/backend"
)

// Severity ranks a notice for rendering.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is the user-visible outcome of a failed or noteworthy operation.
type Notice struct {
	Severity Severity
	Message  string
}

// ErrorPolicy turns any error into the notice a screen renders.
type ErrorPolicy interface {
	Describe(err error) Notice
}

// ErrSignedOut is returned by screens that need an identity when there is none.
var ErrSignedOut = errors.New("not signed in")

// ErrNotOrganizer is returned when a non-organizer tries an organizer action.
var ErrNotOrganizer = errors.New("organizer role required")

// ValidationError is a client-side form failure. It is reported before any
// network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

const (
	msgNetwork    = "Cannot reach the server. Check your connection and try again."
	msgPermission = "You do not have permission to do that."
	msgUnexpected = "Something went wrong. Please try again."
)

// DefaultPolicy is the ErrorPolicy used by every screen.
type DefaultPolicy struct{}

func (DefaultPolicy) Describe(err error) Notice {
	var verr *ValidationError
	var authErr *backend.AuthError
	var accessErr *backend.AccessError
	switch {
	case errors.As(err, &verr):
		return Notice{Severity: SeverityWarning, Message: verr.Message}
	case errors.Is(err, ErrSignedOut):
		return Notice{Severity: SeverityWarning, Message: "Sign in to continue."}
	case errors.Is(err, ErrNotOrganizer):
		return Notice{Severity: SeverityWarning, Message: "Only organizers can manage events."}
	case errors.Is(err, context.Canceled):
		return Notice{Severity: SeverityInfo, Message: "Cancelled."}
	case errors.As(err, &authErr):
		return describeAuth(authErr)
	case errors.As(err, &accessErr):
		return describeAccess(accessErr)
	default:
		return Notice{Severity: SeverityError, Message: msgUnexpected}
	}
}

func describeAuth(err *backend.AuthError) Notice {
	switch err.Kind {
	case backend.AuthBadCredentials:
		return Notice{Severity: SeverityWarning, Message: "Invalid email or password."}
	case backend.AuthNetwork:
		return Notice{Severity: SeverityError, Message: msgNetwork}
	case backend.AuthEmailNotConfirmed:
		return Notice{Severity: SeverityWarning, Message: "Confirm your email address before signing in."}
	default:
		return backendMessage(err.Message)
	}
}

func describeAccess(err *backend.AccessError) Notice {
	switch err.Kind {
	case backend.AccessNetwork:
		return Notice{Severity: SeverityError, Message: msgNetwork}
	case backend.AccessPermission:
		return Notice{Severity: SeverityWarning, Message: msgPermission}
	case backend.AccessNotFound:
		return Notice{Severity: SeverityWarning, Message: "It no longer exists."}
	case backend.AccessMalformed:
		return Notice{Severity: SeverityError, Message: "The server sent data the app cannot read."}
	default:
		return backendMessage(err.Message)
	}
}

func backendMessage(msg string) Notice {
	if msg == "" {
		msg = msgUnexpected
	}
	return Notice{Severity: SeverityError, Message: msg}
}
