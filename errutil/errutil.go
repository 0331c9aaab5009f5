package errutil

import (
	"fmt"
	"os"
)

// Bug reports a broken internal invariant. It never returns.
func Bug(format string, args ...any) {
	panic(fmt.Sprintf("BUG: "+format, args...))
}

// BugOn panics with the formatted message when cond holds.
func BugOn(cond bool, format string, args ...any) {
	if cond {
		Bug(format, args...)
	}
}

// FatalIf terminates the process when err is not nil.
// Meant for tools and tests, never for library code paths reachable by callers.
func FatalIf(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
	os.Exit(1)
}
