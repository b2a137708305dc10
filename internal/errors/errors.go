// Package errors defines the single structured error type shared by the
// lexer, parser, semantic pass and runtime.
package errors

import (
	"fmt"
	"strings"

	juju "github.com/juju/errors"
)

// Stage identifies which pipeline phase raised an Error.
type Stage int

const (
	StageLexer Stage = iota
	StageParser
	StageSemantics
	StageRuntime
)

func (s Stage) String() string {
	switch s {
	case StageLexer:
		return "lexer"
	case StageParser:
		return "parser"
	case StageSemantics:
		return "semantics"
	case StageRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Location is a 0-origin line/column position, mirroring the lexer's
// Location so errors can point back into the source without depending
// on the token package.
type Location struct {
	Line   int
	Column int
}

// Error is the structured error type returned by every stage of the
// pipeline. It always carries a message and, where possible, a Location.
// Lexer errors additionally carry a reconstructed source line with a
// caret under the offending column.
type Error struct {
	Stage    Stage
	Location Location
	HasLoc   bool
	Message  string
	SrcLine  string
	HasCaret bool
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s error]", e.Stage)
	if e.HasLoc {
		fmt.Fprintf(&b, " line %d, column %d:", e.Location.Line, e.Location.Column)
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if e.HasCaret {
		b.WriteByte('\n')
		b.WriteString(e.SrcLine)
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", e.Location.Column))
		b.WriteByte('^')
	}
	return b.String()
}

// Unwrap exposes the underlying cause, if any, so callers can use
// errors.Is/As from the standard library against juju-wrapped causes.
func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error with no location (e.g. a semantic error about the
// document as a whole).
func New(stage Stage, format string, args ...any) *Error {
	return &Error{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		cause:   juju.New(fmt.Sprintf(format, args...)),
	}
}

// At builds an Error anchored to a Location.
func At(stage Stage, line, column int, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Stage:    stage,
		Location: Location{Line: line, Column: column},
		HasLoc:   true,
		Message:  msg,
		cause:    juju.Annotatef(juju.New(msg), "at line %d column %d", line, column),
	}
}

// WithCaret attaches a reconstructed source line and caret to an Error
// built by At. srcLine should be the full text of Location.Line with no
// trailing newline.
func (e *Error) WithCaret(srcLine string) *Error {
	e.SrcLine = srcLine
	e.HasCaret = true
	return e
}

// Wrap annotates an existing error as having occurred while performing
// some higher-level action, preserving the original as the cause.
func Wrap(stage Stage, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Stage:   stage,
		Message: fmt.Sprintf("%s: %s", msg, err),
		cause:   juju.Annotate(err, msg),
	}
}
