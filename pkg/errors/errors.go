package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Kind names the script-visible error constructor an error maps to.
type Kind string

const (
	KindError          Kind = "Error"
	KindTypeError      Kind = "TypeError"
	KindRangeError     Kind = "RangeError"
	KindReferenceError Kind = "ReferenceError"
	KindSyntaxError    Kind = "SyntaxError"
	KindURIError       Kind = "URIError"
	KindEvalError      Kind = "EvalError"
)

// Kinds lists every error kind in the order the builtins install them.
var Kinds = []Kind{KindError, KindTypeError, KindRangeError, KindReferenceError, KindSyntaxError, KindURIError, KindEvalError}

// ParseKind maps a constructor name back to its Kind. Unknown names map to KindError.
func ParseKind(name string) Kind {
	for _, k := range Kinds {
		if string(k) == name {
			return k
		}
	}
	return KindError
}

// CoreError is the interface implemented by all errors surfaced to embedders.
type CoreError interface {
	error
	Pos() Position
	Kind() Kind
	// Message returns the specific error message without kind or position info.
	Message() string
	Unwrap() error
}

// ScriptError is a script-level error (TypeError, RangeError, ...) detached
// from any runtime, suitable for reporting.
type ScriptError struct {
	Position
	ErrKind Kind
	Msg     string
	Cause   error // Underlying cause, if any
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.ErrKind, e.Line, e.Column, e.Msg)
	}
	if e.Msg == "" {
		return string(e.ErrKind)
	}
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Msg)
}
func (e *ScriptError) Pos() Position   { return e.Position }
func (e *ScriptError) Kind() Kind      { return e.ErrKind }
func (e *ScriptError) Message() string { return e.Msg }
func (e *ScriptError) Unwrap() error   { return e.Cause }
func (e *ScriptError) CausedBy(cause error) *ScriptError {
	e.Cause = cause
	return e
}

// New creates a ScriptError of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *ScriptError {
	return &ScriptError{ErrKind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At returns a copy of e positioned at pos.
func (e *ScriptError) At(pos Position) *ScriptError {
	c := *e
	c.Position = pos
	return &c
}

// --- Error Reporting ---

// DisplayErrors prints errors to stderr, including the source line and a
// position marker when the error carries a valid position.
func DisplayErrors(source string, errs []CoreError) {
	FprintErrors(os.Stderr, source, errs)
}

// FprintErrors is DisplayErrors with an explicit destination.
func FprintErrors(w io.Writer, source string, errs []CoreError) {
	if len(errs) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		// Ensure line numbers are within bounds (1-based index)
		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s: %s\n", kind, msg)
			continue
		}

		sourceLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")

		fmt.Fprintf(w, "%s at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)
		fmt.Fprintf(w, "  %s\n", sourceLine)

		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		marker := strings.Repeat(" ", col) + "^"
		if span := pos.EndPos - pos.StartPos; span > 1 {
			marker += strings.Repeat("~", span-1)
		}
		fmt.Fprintf(w, "  %s\n", marker)
		fmt.Fprintln(w)
	}
}
