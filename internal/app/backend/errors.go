package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthErrorKind classifies a failed authentication call.
type AuthErrorKind string

const (
	AuthBadCredentials    AuthErrorKind = "bad_credentials"
	AuthNetwork           AuthErrorKind = "network"
	AuthEmailNotConfirmed AuthErrorKind = "email_not_confirmed"
	AuthRejected          AuthErrorKind = "rejected"
)

// AuthError is returned by every authentication call that does not succeed.
type AuthError struct {
	Kind    AuthErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth %s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// AccessErrorKind classifies a failed table operation.
type AccessErrorKind string

const (
	AccessNetwork    AccessErrorKind = "network"
	AccessPermission AccessErrorKind = "permission"
	AccessNotFound   AccessErrorKind = "not_found"
	AccessConflict   AccessErrorKind = "conflict"
	AccessMalformed  AccessErrorKind = "malformed"
	AccessRejected   AccessErrorKind = "rejected"
)

// AccessError carries the backend's reported failure. Message is the
// backend's own message, unchanged.
type AccessError struct {
	Kind    AccessErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("access %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("access %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *AccessError) Unwrap() error { return e.Err }

// apiError is a non-2xx response decoded from the envelope.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("backend returned %d %s: %s", e.Status, e.Code, e.Message)
}

func authErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var malformed *malformedError
	if errors.As(err, &malformed) {
		return &AuthError{Kind: AuthRejected, Err: err}
	}
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return &AuthError{Kind: AuthNetwork, Err: err}
	}
	kind := AuthRejected
	switch {
	case apiErr.Code == "email_not_confirmed":
		kind = AuthEmailNotConfirmed
	case apiErr.Status == http.StatusUnauthorized:
		kind = AuthBadCredentials
	}
	return &AuthError{Kind: kind, Status: apiErr.Status, Message: apiErr.Message}
}

func accessErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var malformed *malformedError
	if errors.As(err, &malformed) {
		return &AccessError{Kind: AccessMalformed, Err: err}
	}
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return &AccessError{Kind: AccessNetwork, Err: err}
	}
	kind := AccessRejected
	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = AccessPermission
	case http.StatusNotFound:
		kind = AccessNotFound
	case http.StatusConflict:
		kind = AccessConflict
	}
	return &AccessError{Kind: kind, Status: apiErr.Status, Message: apiErr.Message}
}
