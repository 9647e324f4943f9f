// Package errors provides the error handling primitives used throughout the
// dedupe engine. It re-exports github.com/pkg/errors so call sites get
// wrapping with stack traces, and adds a Fatal error kind for conditions
// that must never be retried (bad configuration, allocation failure).
package errors

import "github.com/pkg/errors"

// New, Errorf, Wrap, Wrapf, Cause, Is and As behave exactly like their
// github.com/pkg/errors counterparts.
var (
	New    = errors.New
	Errorf = errors.Errorf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Cause  = errors.Cause
	Is     = errors.Is
	As     = errors.As
)

// fatalError marks an error as unrecoverable: the caller must not retry the
// operation with the same inputs (spec: configuration/allocation errors
// fail context creation with no partial state left behind).
type fatalError string

func (e fatalError) Error() string {
	return string(e)
}

// Fatal returns an error that IsFatal reports true for.
func Fatal(s string) error {
	return fatalError(s)
}

// Fatalf is like Fatal but formats its arguments according to a format
// specifier, like fmt.Sprintf.
func Fatalf(s string, args ...interface{}) error {
	return fatalError(Errorf(s, args...).Error())
}

// IsFatal returns whether err is a fatal error that should abort instead of
// being retried.
func IsFatal(err error) bool {
	_, ok := err.(fatalError)
	return ok
}
