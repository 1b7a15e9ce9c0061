// Package pipelineerr declares the error taxonomy shared by every
// service-layer component (OntologyService, GraphRepository CRUD,
// OntologyLearner). Node-level failures inside the pipeline DAG never
// use these directly: they collapse into a pipeline.Patch carrying a
// plain error string, per the node contract's no-exception-leakage rule.
package pipelineerr

import (
	"errors"
	"fmt"
)

// Kind classifies a DomainError into the taxonomy spec.md §7 describes.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthN         Kind = "authentication"
	KindAuthZ         Kind = "authorization"
	KindConnectivity  Kind = "connectivity"
	KindRateLimit     Kind = "rate_limit"
	KindResponseShape Kind = "response_shape"
	KindQueryExec     Kind = "query_execution"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindInvalidState  Kind = "invalid_state"
)

// DomainError is raised by the service layer (outside the DAG) and
// propagates to the caller with structured context, so the API surface
// can translate it to the appropriate status code.
type DomainError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New constructs a DomainError of the given kind.
func New(kind Kind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// Wrap constructs a DomainError that preserves an underlying cause.
func Wrap(kind Kind, message string, err error) *DomainError {
	return &DomainError{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is a DomainError of the given kind.
func Is(err error, kind Kind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// Sentinel errors for common NotFound/Conflict cases that callers want
// to match with errors.Is without constructing a DomainError by hand.
var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrConceptNotFound  = errors.New("concept not found")
)

// VersionMismatch formats the optimistic-lock conflict message exactly
// as spec.md §7's example: "Version mismatch: expected N, current M".
func VersionMismatch(expected, current int) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("Version mismatch: expected %d, current %d", expected, current),
	}
}
