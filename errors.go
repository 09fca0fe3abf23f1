package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Error taxonomy. Handlers and the coordinator return these typed errors;
// respondError converts them to a JSON body with a "message" field at the
// handler boundary. Anything unrecognized becomes a generic 500 without
// leaking internals.

// ValidationError reports missing or malformed request fields. Fields, when
// set, itemizes the offending field names so the caller can correct exactly
// what is wrong.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return e.Message + ": " + strings.Join(e.Fields, ", ")
	}
	return e.Message
}

func errMissingFields(fields ...string) *ValidationError {
	return &ValidationError{Message: "missing or empty required fields", Fields: fields}
}

// AuthenticationError: missing/invalid/expired token or wrong credentials.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// AuthorizationError: authenticated but insufficient role or not the
// resource owner.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NotFoundError: the named resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConflictError: duplicate username/email, already-favorited, and similar
// uniqueness violations.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// DependencyError: a mail or object-store collaborator failed. The wrapped
// cause is logged, never serialized.
type DependencyError struct {
	Message string
	Err     error
}

func (e *DependencyError) Error() string { return e.Message }
func (e *DependencyError) Unwrap() error { return e.Err }

// status maps an error to its HTTP status and user-visible message.
func status(err error) (int, string) {
	var (
		ve *ValidationError
		ae *AuthenticationError
		ze *AuthorizationError
		nf *NotFoundError
		ce *ConflictError
		de *DependencyError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.As(err, &ae):
		return http.StatusUnauthorized, ae.Message
	case errors.As(err, &ze):
		return http.StatusForbidden, ze.Message
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.As(err, &ce):
		return http.StatusBadRequest, ce.Message
	case errors.As(err, &de):
		return http.StatusBadGateway, de.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes the JSON error body. Unexpected errors are logged with
// their cause; expected ones only at debug level.
func (a *app) respondError(c *gin.Context, err error) {
	code, msg := status(err)
	if code == http.StatusInternalServerError || code == http.StatusBadGateway {
		a.log.Error("request failed", "path", c.FullPath(), "error", err)
	} else {
		a.log.Debug("request rejected", "path", c.FullPath(), "status", code, "message", msg)
	}
	c.AbortWithStatusJSON(code, gin.H{"message": msg})
}
