// Package utils holds the small assertion helpers shared by every IR stage.
// The core performs no process/file I/O (see the concurrency & resource
// model), so unlike the teacher's utils package this one carries no
// exec.Command/file-copy helpers — those belonged to falcon's gcc/link driver
// and have no SPEC_FULL.md component to serve.
package utils

import "fmt"

// Assert panics with a formatted message when cond is false. Reserve this for
// invariants that indicate a compiler bug (an ICE) rather than a user error;
// user-facing failures are reported through the diag package instead.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

func Unimplement(what string) {
	panic(fmt.Sprintf("not implemented: %s", what))
}

func ShouldNotReachHere(why string) {
	panic(fmt.Sprintf("should not reach here: %s", why))
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
