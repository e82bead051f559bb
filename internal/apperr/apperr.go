// Package apperr defines the error kinds a session surfaces to its user.
//
// Callers wrap underlying failures with a Kind so the HTTP layer and the
// terminal chat can decide how to render them without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindConnection    Kind = "connection"
	KindGeneration    Kind = "generation"
	KindExecution     Kind = "execution"
	KindNotConnected  Kind = "not_connected"
	KindInvalidInput  Kind = "invalid_input"
)

type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }

func Configuration(format string, args ...any) *E {
	return New(KindConfiguration, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the outermost *E in the chain, or "" when err
// carries none.
func KindOf(err error) Kind {
	var typed *E
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
