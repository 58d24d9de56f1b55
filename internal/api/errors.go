package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports that a service the caller referred to is not
// currently tracked by the coordinator.
type NotFoundError struct {
	// ServiceID is the identifier of the service that was not found.
	ServiceID string

	// Message provides a custom error message if the default format is insufficient.
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("service %s not found", e.ServiceID)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewServiceNotFoundError creates a not found error for the given service id.
func NewServiceNotFoundError(id string) *NotFoundError {
	return &NotFoundError{ServiceID: id}
}

// NeededError reports that a stop request was refused because another
// running service still lists the target in its direct needs.
type NeededError struct {
	// ServiceID is the service that cannot be stopped.
	ServiceID string

	// NeededBy lists the running services whose direct needs contain ServiceID.
	NeededBy []string
}

// Error implements the error interface for NeededError.
func (e *NeededError) Error() string {
	if len(e.NeededBy) == 0 {
		return fmt.Sprintf("service %s is still needed", e.ServiceID)
	}
	return fmt.Sprintf("service %s is still needed by %s", e.ServiceID, strings.Join(e.NeededBy, ", "))
}

// IsNeeded checks if an error is a NeededError using error unwrapping.
// Callers that historically matched a "cannot stop" condition should use
// this predicate; both spellings denote the same refusal.
func IsNeeded(err error) bool {
	var neededErr *NeededError
	return errors.As(err, &neededErr)
}

// NewNeededError creates a stop refusal for the given service id.
func NewNeededError(id string, neededBy []string) *NeededError {
	return &NeededError{ServiceID: id, NeededBy: neededBy}
}

// CyclicError reports that the needs graph reachable from a service
// contains a cycle. Path holds the ids along the detected cycle, in
// traversal order, when known.
type CyclicError struct {
	Path []string
}

// Error implements the error interface for CyclicError.
func (e *CyclicError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency"
	}
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// IsCyclic checks if an error is a CyclicError using error unwrapping.
func IsCyclic(err error) bool {
	var cyclicErr *CyclicError
	return errors.As(err, &cyclicErr)
}

// NewCyclicError creates a CyclicError with the offending path.
func NewCyclicError(path []string) *CyclicError {
	return &CyclicError{Path: path}
}

// BadSpecError reports that a value handed to the spec normalizer does
// not match any of the accepted input shapes.
type BadSpecError struct {
	// Input is a printable rendering of the rejected value.
	Input string
}

// Error implements the error interface for BadSpecError.
func (e *BadSpecError) Error() string {
	return fmt.Sprintf("bad service spec: %s", e.Input)
}

// IsBadSpec checks if an error is a BadSpecError using error unwrapping.
func IsBadSpec(err error) bool {
	var badSpecErr *BadSpecError
	return errors.As(err, &badSpecErr)
}

// NewBadSpecError creates a BadSpecError for the given input value.
func NewBadSpecError(input interface{}) *BadSpecError {
	return &BadSpecError{Input: fmt.Sprintf("%v", input)}
}

// ErrNoSupervisor is returned when a coordinator is constructed without
// an external supervisor to delegate spawns and terminations to.
var ErrNoSupervisor = errors.New("no supervisor configured")
