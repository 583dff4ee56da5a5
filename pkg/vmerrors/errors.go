// Package vmerrors defines the error taxonomy shared by the runtime
// layers of the interpreter: the class model, the work-queue VM, and the
// scheduler report failures as a *VMError tagged with a Kind, so a REPL
// or test can switch on the kind without parsing message text. The lexer
// and parser report plain Go errors; nothing builds a KindParse error.
package vmerrors

import (
	"errors"
	"fmt"
	"strings"

	perrors "github.com/pkg/errors"
)

// Kind names a category of failure. These are the taxonomy from the
// specification, not Go types: every runtime error collapses into one of
// these buckets before it reaches a caller.
type Kind string

const (
	KindParse                  Kind = "parse"
	KindDispatch               Kind = "dispatch"
	KindValue                  Kind = "value"
	KindClassConstruction      Kind = "class-construction"
	KindReturnToDeadActivation Kind = "return-to-dead-activation"
	KindScheduler              Kind = "scheduler"
	KindInternal               Kind = "internal"
)

// Frame is one entry in a rendered stack trace: a selector name, innermost
// first, per spec §6 "Error reporting".
type Frame struct {
	Selector string
	Detail   string
}

// VMError is the error type every component in this module returns for a
// recoverable-but-fatal condition. The underlying cause (often produced
// with fmt.Errorf or github.com/pkg/errors) is preserved so %+v still
// prints a wrapped frame trace during development.
type VMError struct {
	Kind    Kind
	Message string
	Trace   []Frame
	cause   error
}

// New builds a *VMError with no wrapped cause.
func New(kind Kind, format string, args ...interface{}) *VMError {
	return &VMError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an existing error with a kind, preserving it as the cause
// via github.com/pkg/errors so errors.Cause(err) still recovers it.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *VMError {
	return &VMError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   perrors.WithStack(cause),
	}
}

// WithTrace returns a copy of e with its stack trace set to frames,
// innermost first.
func (e *VMError) WithTrace(frames []Frame) *VMError {
	cp := *e
	cp.Trace = frames
	return &cp
}

// Error implements the error interface, rendering the message and stack
// trace the way spec §6 describes: "stack trace is the linked activation
// chain rendered as selector names, innermost first".
func (e *VMError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	for _, f := range e.Trace {
		b.WriteString("\n  at ")
		b.WriteString(f.Selector)
		if f.Detail != "" {
			b.WriteString(" (")
			b.WriteString(f.Detail)
			b.WriteString(")")
		}
	}
	if e.cause != nil {
		b.WriteString("\ncaused by: ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// TraceString renders just the stack-trace portion of Error() — the
// linked activation chain as selector names, innermost first — without
// the kind/message prefix, for spec §7's exception object's `stackTrace`
// selector.
func (e *VMError) TraceString() string {
	var b strings.Builder
	for i, f := range e.Trace {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.Selector)
		if f.Detail != "" {
			b.WriteString(" (")
			b.WriteString(f.Detail)
			b.WriteString(")")
		}
	}
	return b.String()
}

// Unwrap lets errors.As/errors.Is see through to the wrapped cause.
func (e *VMError) Unwrap() error {
	return e.cause
}

// Is reports whether err is a *VMError of the given kind, so callers can
// write `errors.Is(err, vmerrors.KindDispatch)`-style checks via As instead.
func Is(err error, kind Kind) bool {
	var ve *VMError
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}
