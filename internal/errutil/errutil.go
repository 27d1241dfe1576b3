// Package errutil centralises the fatal-error policy described in the
// spec: InvariantViolated, BadInput and IOError conditions have no local
// recovery, so they panic rather than return an error up a call chain
// that has no way to act on it.
package errutil

import "fmt"

// FatalIf panics with a contextual message if err is non-nil. Used at
// every IOError boundary (short read/write, failed rename/delete).
func FatalIf(err error) {
	if err == nil {
		return
	}
	panic(fmt.Sprintf("FATAL: %v", err))
}

// Bug panics unconditionally, formatting the message like fmt.Sprintf.
// Used for InvariantViolated conditions: a duplicate k-mer insert, a
// zero-weight edge between distinct color-classes, a missing bitmap
// during reshuffle, a filter that failed to resize.
func Bug(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

// BugOn panics with the formatted message if cond is true.
func BugOn(cond bool, format string, args ...any) {
	if cond {
		Bug(format, args...)
	}
}

// BugOnNotEq panics if a != b, naming both values in the message.
func BugOnNotEq(a, b any) {
	if a == b {
		return
	}
	Bug("BUG: expected equal values, got %v != %v", a, b)
}
