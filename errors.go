package mimeo

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNotComposite indicates a composite-only entry point was invoked
	// on a primitive value.
	ErrNotComposite = errors.New("value is not a composite")

	// ErrHandlerFailed indicates a registered custom handler returned an
	// error. The traversal aborts and no partial result is returned.
	ErrHandlerFailed = errors.New("custom handler failed")

	// ErrCycleInvariant indicates the visited map lost an entry that must
	// exist. This is an internal invariant violation, not a caller error.
	ErrCycleInvariant = errors.New("visited map invariant violated")

	// ErrExportTarget indicates a value cannot be exported into the
	// requested Go type.
	ErrExportTarget = errors.New("invalid export target")

	// ErrExportField indicates a single field could not be converted
	// during export.
	ErrExportField = errors.New("field export failed")
)

// HandlerError reports a custom handler failure. It carries the capability
// and value type for context and unwraps to the handler's own error so the
// cause propagates verbatim; errors.Is also matches ErrHandlerFailed.
type HandlerError struct {
	Capability Capability // Capability whose handler failed
	TypeName   string     // Type of the value the handler was invoked on
	Cause      error      // Error returned by the handler
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler for %s: %v", e.Capability, e.TypeName, e.Cause)
}

func (e *HandlerError) Unwrap() error {
	return e.Cause
}

func (e *HandlerError) Is(target error) bool {
	return target == ErrHandlerFailed
}

// InvariantError reports an internal traversal inconsistency. It should
// never occur given a correct implementation and is not user-recoverable.
type InvariantError struct {
	Err    error  // Underlying sentinel error (ErrCycleInvariant)
	Detail string // What the traversal expected and did not find
}

func (e *InvariantError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	}
	return e.Err.Error()
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// ExportError reports a conversion failure while exporting a document
// graph into a native Go value.
type ExportError struct {
	Err   error  // Underlying sentinel error (ErrExportTarget, ErrExportField, ErrNotComposite)
	Field string // Field path that failed, if any
	Type  string // Target Go type
	Cause error  // Original conversion error, if any
}

func (e *ExportError) Error() string {
	switch {
	case e.Field != "" && e.Cause != nil:
		return fmt.Sprintf("%s (field %s, type %s): %v", e.Err.Error(), e.Field, e.Type, e.Cause)
	case e.Field != "":
		return fmt.Sprintf("%s (field %s, type %s)", e.Err.Error(), e.Field, e.Type)
	case e.Cause != nil:
		return fmt.Sprintf("%s (type %s): %v", e.Err.Error(), e.Type, e.Cause)
	default:
		return fmt.Sprintf("%s (type %s)", e.Err.Error(), e.Type)
	}
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// newHandlerError wraps a handler failure with its call context.
func newHandlerError(capability Capability, typeName string, cause error) error {
	return &HandlerError{
		Capability: capability,
		TypeName:   typeName,
		Cause:      cause,
	}
}

// newInvariantError builds an InvariantError around ErrCycleInvariant.
func newInvariantError(detail string) error {
	return &InvariantError{
		Err:    ErrCycleInvariant,
		Detail: detail,
	}
}

// newExportError wraps an export conversion failure.
func newExportError(sentinel error, field, typ string, cause error) error {
	return &ExportError{
		Err:   sentinel,
		Field: field,
		Type:  typ,
		Cause: cause,
	}
}
