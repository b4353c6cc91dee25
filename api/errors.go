package main

import (
	"errors"
	"fmt"
)

var (
	errAuth       = errors.New("invalid email or password")
	errForbidden  = errors.New("permission denied")
	errNotFound   = errors.New("resource not found")
	errBadRequest = errors.New("bad request")
	errConfig     = errors.New("service not configured")
)

// validationError carries the messages collected by a validator, in the
// order the checks ran.
type validationError struct {
	messages []string
}

func (e *validationError) Error() string {
	if len(e.messages) == 0 {
		return "validation failed"
	}
	return e.messages[0]
}

// first is the message shown to the user as a flash notice.
func (e *validationError) first() string {
	return e.Error()
}

type externalErrorKind string

const (
	externalTimeout     externalErrorKind = "timeout"
	externalAuth        externalErrorKind = "auth"
	externalQuota       externalErrorKind = "quota"
	externalMalformed   externalErrorKind = "malformed"
	externalUnavailable externalErrorKind = "unavailable"
)

// externalServiceError is a failed call to the generative AI endpoint. The
// kind is for logs and metrics only; callers get a generic message.
type externalServiceError struct {
	kind externalErrorKind
	err  error
}

func (e *externalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.kind, e.err)
}

func (e *externalServiceError) Unwrap() error {
	return e.err
}
