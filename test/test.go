// Package test collects small assertion helpers shared by the test suites
// throughout this module. It deliberately does not depend on any other
// package in the module, so that it can be imported from anywhere without
// creating import cycles.
package test

import (
	"fmt"
	"reflect"
	"testing"
)

// Equate fails the test if got and want are not deeply equal.
func Equate(t *testing.T, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("not equal: got %v, want %v", got, want)
	}
}

// ExpectEquality is an alias of Equate, kept for readability at call sites
// that are asserting on a calculated value rather than a fixture.
func ExpectEquality(t *testing.T, got, want interface{}) {
	t.Helper()
	Equate(t, got, want)
}

// ExpectInequality fails the test if got and want are deeply equal.
func ExpectInequality(t *testing.T, got, want interface{}) {
	t.Helper()
	if reflect.DeepEqual(got, want) {
		t.Errorf("unexpected equality: %v", got)
	}
}

// ExpectApproximate fails the test if got and want differ by more than
// tolerance.
func ExpectApproximate(t *testing.T, got, want, tolerance float64) {
	t.Helper()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		t.Errorf("not approximately equal: got %v, want %v (tolerance %v)", got, want, tolerance)
	}
}

// ExpectFailure fails the test unless v represents a failure: a non-nil
// error, or a boolean false.
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()
	switch e := v.(type) {
	case error:
		if e == nil {
			t.Errorf("expected failure, got nil error")
		}
	case bool:
		if e {
			t.Errorf("expected failure, got true")
		}
	default:
		t.Errorf("ExpectFailure: unsupported type %T", v)
	}
}

// ExpectSuccess fails the test unless v represents success: a nil error, or
// a boolean true.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()
	switch e := v.(type) {
	case error:
		if e != nil {
			t.Errorf("expected success, got error: %v", e)
		}
	case bool:
		if !e {
			t.Errorf("expected success, got false")
		}
	case nil:
		// fine, nil always means success
	default:
		t.Errorf("ExpectSuccess: unsupported type %T", v)
	}
}

// errorf is a tiny helper used by the writer types below to report
// construction errors the way the rest of the module does (fmt.Errorf is
// enough here - these errors never escape a test binary).
func errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
