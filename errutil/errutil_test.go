package errutil

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBugOn(t *testing.T) {
	require.NotPanics(t, func() { BugOn(false, "never") })
	require.PanicsWithValue(t, "BUG: bad value 7", func() { BugOn(true, "bad value %d", 7) })
}

func TestFatalIfNil(t *testing.T) {
	require.NotPanics(t, func() { FatalIf(nil) })
}

func TestFatalIfExits(t *testing.T) {
	if os.Getenv("ERRUTIL_FATAL") == "1" {
		FatalIf(errors.New("disk full"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalIfExits$")
	cmd.Env = append(os.Environ(), "ERRUTIL_FATAL=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
	require.Contains(t, string(out), "fatal: disk full")
}
