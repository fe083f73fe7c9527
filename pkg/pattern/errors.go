package pattern

import (
	"errors"
	"fmt"
)

// Compile errors. All of them indicate a defect in a static template table.
var (
	ErrMalformedTemplate    = errors.New("malformed template")
	ErrUnknownField         = errors.New("placeholder references undeclared field")
	ErrNoParser             = errors.New("no parser bound for field kind")
	ErrDuplicatePlaceholder = errors.New("placeholder used more than once")
	ErrUnboundField         = errors.New("required field has no placeholder")
)

// Build errors.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrKindMismatch    = errors.New("argument kind does not match field")
	ErrEmptyArgument   = errors.New("empty path argument")
)

// CompileError reports why a template could not be compiled.
type CompileError struct {
	Template    string
	Placeholder string
	Err         error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("compile %q: {%s}: %v", e.Template, e.Placeholder, e.Err)
	}
	return fmt.Sprintf("compile %q: %v", e.Template, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
