package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents a resource not found error with contextual information.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "plan", "activity", "workflow file")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

var (
	// NewPlanNotFoundError creates a plan not found error.
	NewPlanNotFoundError = func(idOrName string) *NotFoundError {
		return NewNotFoundError("plan", idOrName)
	}

	// NewActivityNotFoundError creates an activity not found error.
	NewActivityNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("activity", id)
	}
)

// ParseError is raised for malformed workflow files and step commands:
// invalid structure, unsupported command syntax, multi-command constructs,
// unresolved $name references, duplicate or reserved argument names and
// invalid plan or step names. It is always fatal to the parse.
type ParseError struct {
	// File is the workflow file path, when known
	File string
	// Step is the public name of the offending step, when known
	Step string
	// Attribute names the offending attribute (command, inputs, name, ...)
	Attribute string
	// Token is the offending command token or value, when there is one
	Token string
	// Position is the 1-based offset of Token in the command, 0 if unknown
	Position int
	// Line is the line in File, 0 if unknown
	Line int
	// Message describes the problem
	Message string
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
	}
	if e.Step != "" {
		fmt.Fprintf(&b, " (step %q", e.Step)
		if e.Attribute != "" {
			fmt.Fprintf(&b, ", %s", e.Attribute)
		}
		b.WriteString(")")
	} else if e.Attribute != "" {
		fmt.Fprintf(&b, " (%s)", e.Attribute)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Token != "" {
		fmt.Fprintf(&b, " near %q", e.Token)
		if e.Position > 0 {
			fmt.Fprintf(&b, " at offset %d", e.Position)
		}
	}
	return b.String()
}

// IsParseError checks if an error is or wraps a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// GraphCycleError is raised when the execution graph contains a cycle.
// Cycle alternates plan names and the descriptions of the edges between
// them, starting and ending with the same plan name.
type GraphCycleError struct {
	Cycle []string
}

// Error implements the error interface for GraphCycleError.
func (e *GraphCycleError) Error() string {
	return fmt.Sprintf("cycle detected in execution graph: %s", strings.Join(e.Cycle, " -> "))
}

// IsGraphCycleError checks if an error is or wraps a GraphCycleError.
func IsGraphCycleError(err error) bool {
	var cycleErr *GraphCycleError
	return errors.As(err, &cycleErr)
}

// IdentityConflictError signals that a plan id cannot be used as is, either
// because the stored plan with that id was tombstoned or because it is of an
// incompatible kind. The derivation resolver reacts by re-keying the plan.
type IdentityConflictError struct {
	ID     string
	Reason string
}

// Error implements the error interface for IdentityConflictError.
func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("identity conflict for plan %s: %s", e.ID, e.Reason)
}
