// Package errors defines the error taxonomy shared by the licseal core.
//
// Expected failures (a rejected field value, a nonconformant document) are
// reported through sentinel errors so callers can branch with errors.Is,
// while batched failures (schema self-checks, whole-document validation)
// are carried by AggregateError so a user sees every problem in one pass.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the core failure categories.
var (
	// ErrInvalidInput indicates a null or malformed argument to a public
	// operation. Programmer error, not a data problem.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTypeConversion indicates the coercion ladder was exhausted without
	// producing a value of the requested type.
	ErrTypeConversion = errors.New("type conversion failed")

	// ErrMissingFile indicates a processor or hasher was given a path that
	// does not exist.
	ErrMissingFile = errors.New("file not found")

	// ErrFieldRejected indicates a single field failed its validator.
	// Raised fail-fast at the point of write.
	ErrFieldRejected = errors.New("field rejected")

	// ErrSchemaNonconformant indicates a document failed whole-document
	// structural validation. Always carries the complete problem list.
	ErrSchemaNonconformant = errors.New("document does not conform to schema")

	// ErrSchemaDefinition indicates a schema violates its own invariants
	// (duplicate names, unsupported type, bad default value).
	ErrSchemaDefinition = errors.New("invalid schema definition")
)

// ValidationError describes a single field-level problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AggregateError carries a batch of problems discovered by a fail-slow
// check. It unwraps to the sentinel that classifies the batch, so
// errors.Is(err, ErrSchemaNonconformant) works on the aggregate.
type AggregateError struct {
	kind     error
	Problems []string
}

// NewAggregate builds an AggregateError classified by kind. The problem
// list is copied so later appends by the caller cannot mutate the error.
func NewAggregate(kind error, problems []string) *AggregateError {
	return &AggregateError{
		kind:     kind,
		Problems: append([]string(nil), problems...),
	}
}

// Error implements the error interface
func (e *AggregateError) Error() string {
	switch len(e.Problems) {
	case 0:
		return e.kind.Error()
	case 1:
		return fmt.Sprintf("%s: %s", e.kind.Error(), e.Problems[0])
	default:
		return fmt.Sprintf("%s: %d problems: %s",
			e.kind.Error(), len(e.Problems), strings.Join(e.Problems, "; "))
	}
}

// Unwrap exposes the classifying sentinel to errors.Is.
func (e *AggregateError) Unwrap() error {
	return e.kind
}

// FieldRejection wraps ErrFieldRejected with the field name and the
// validator's reason.
func FieldRejection(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrFieldRejected, field, reason)
}

// MissingFile wraps ErrMissingFile with the offending path and the
// underlying filesystem error when one exists.
func MissingFile(path string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %v", ErrMissingFile, path, cause)
	}
	return fmt.Errorf("%w: %s", ErrMissingFile, path)
}

// InvalidInput wraps ErrInvalidInput with a description of the bad argument.
func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// TypeConversion wraps ErrTypeConversion with the original value and the
// type it could not become.
func TypeConversion(value any, target string) error {
	return fmt.Errorf("%w: cannot interpret %v as %s", ErrTypeConversion, value, target)
}
