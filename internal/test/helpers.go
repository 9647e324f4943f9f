// Package test provides small helper functions used by this module's own
// test suites, following the same rtest.OK/Equals/Assert calling
// convention used throughout the teacher project's tests.
package test

import (
	"reflect"
	"testing"
)

// OK fails the test immediately if err is not nil.
func OK(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

// Equals fails the test if want and got are not deeply equal.
func Equals(t testing.TB, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("expected equal, want:\n  %#v\ngot:\n  %#v", want, got)
	}
}

// Assert fails the test if the condition is false.
func Assert(t testing.TB, cond bool, msg string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(msg, args...)
	}
}
