package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError is returned when the server answered 2xx with
// {"success": false}.
type RejectedError struct {
	Op      string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return e.Op + " rejected by server"
	}
	return fmt.Sprintf("%s rejected by server: %s", e.Op, e.Message)
}

// Class groups failures by how the client reacts to them.
type Class int

const (
	ClassUnknown Class = iota
	ClassAuth
	ClassPermission
	ClassServer
	ClassNetwork
	ClassRejected
	ClassClient
	ClassCanceled
)

func (c Class) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassPermission:
		return "permission"
	case ClassServer:
		return "server"
	case ClassNetwork:
		return "network"
	case ClassRejected:
		return "rejected"
	case ClassClient:
		return "client"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classify reports the failure class of err.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == http.StatusUnauthorized:
			return ClassAuth
		case statusErr.Code == http.StatusForbidden:
			return ClassPermission
		case statusErr.Code >= 500:
			return ClassServer
		default:
			return ClassClient
		}
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return ClassRejected
	}

	// A client-side timeout also matches context.DeadlineExceeded; only a
	// cancelled caller context is left unwrapped by the client.
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return ClassNetwork
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassCanceled
	}

	return ClassUnknown
}

// IsUnauthorized reports whether err (or any error in its chain) is a 401.
func IsUnauthorized(err error) bool {
	return Classify(err) == ClassAuth
}

// Describe returns a short user-facing description of err.
func Describe(err error) string {
	var rejected *RejectedError
	var statusErr *StatusError

	switch {
	case errors.As(err, &rejected) && rejected.Message != "":
		return rejected.Message
	case errors.As(err, &statusErr) && statusErr.Message != "":
		return statusErr.Message
	}

	switch Classify(err) {
	case ClassAuth:
		return "your session has expired"
	case ClassPermission:
		return "you do not have permission for this action"
	case ClassServer:
		return "the server ran into a problem"
	case ClassNetwork:
		return "the server could not be reached"
	case ClassCanceled:
		return "the request was cancelled"
	default:
		return "the request failed"
	}
}
