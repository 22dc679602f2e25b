// Package templatecode validates, parses and renders resume templates written
// as React.createElement call expressions. Sources are never executed: they
// are parsed into an allow-listed element tree and evaluated against resume
// data by a small interpreter.
package templatecode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTemplateStructure marks code that is not a usable template:
	// wrong entry point, forbidden constructs or disallowed tags and props.
	ErrInvalidTemplateStructure = errors.New("invalid template structure")

	// ErrValidationSyntax marks code that is not a well-formed expression.
	ErrValidationSyntax = errors.New("validation syntax error")

	// ErrRender marks a failure while evaluating a parsed template.
	ErrRender = errors.New("template render error")
)

// Error describes why a template was rejected.
type Error struct {
	Err    error // one of the sentinels above
	Reason string
	Offset int // byte offset in the normalized source, -1 when unknown
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at offset %d)", e.Err, e.Reason, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func structureError(offset int, format string, args ...any) *Error {
	return &Error{Err: ErrInvalidTemplateStructure, Reason: fmt.Sprintf(format, args...), Offset: offset}
}

func syntaxError(offset int, format string, args ...any) *Error {
	return &Error{Err: ErrValidationSyntax, Reason: fmt.Sprintf(format, args...), Offset: offset}
}

func renderError(format string, args ...any) *Error {
	return &Error{Err: ErrRender, Reason: fmt.Sprintf(format, args...), Offset: -1}
}
