package openapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHTTPDisabled is returned when a URL source is loaded without an HTTP
// client configured.
var ErrHTTPDisabled = errors.New("openapi loader: http support disabled")

// LoadError aborts a validation run before any assertion executes: the
// document could not be read or is not a well-formed contract.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("load contract: %v", e.Err)
	}
	return fmt.Sprintf("load contract %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed syntax or an unrecognised shape. Pointer is
// the dotted path inside the document; Line and Column are 1-based and zero
// when unknown.
type ParseError struct {
	Source  string
	Pointer string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("openapi parser: ")
	if e.Source != "" {
		b.WriteString(e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d, column %d: ", e.Line, e.Column)
	}
	if e.Pointer != "" {
		b.WriteString(e.Pointer)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
