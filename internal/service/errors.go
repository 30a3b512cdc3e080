package service

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups for posts that do not exist.
var ErrNotFound = errors.New("post not found")

// ValidationError reports input the caller can fix.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports an operation that does not fit the post's current
// lifecycle state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}

// ErrNoImages marks image searches that produced no usable candidates.
var ErrNoImages = errors.New("no suitable images found")

// LowScoreError reports the best rating when no candidate scored high enough
// to attach.
type LowScoreError struct {
	Score int
}

func (e *LowScoreError) Error() string {
	return fmt.Sprintf("no suitable image found (best score: %d)", e.Score)
}

// UpstreamError wraps a failure from an external platform or model API.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}
