// internal/cmdutil/cmdutil.go

// Package cmdutil carries the small pieces shared by every cohort tool:
// exit codes, usage printing and --output resolution.
package cmdutil

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cohort/internal/writers"
)

// Exit codes shared by all cohort tools.
const (
	ExitOK      = 0
	ExitNoRows  = 1 // ran fine but produced no output rows
	ExitUsage   = 2
	ExitRuntime = 3
)

// InputExit classifies a load error. An unreadable file is a runtime
// failure (ExitRuntime); everything else, like a malformed or contract-
// violating file, is an input error (ExitUsage).
func InputExit(err error) int {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return ExitRuntime
	}
	return ExitUsage
}

// FlushExit flushes outw and degrades the exit code on failure. A broken
// pipe is a clean exit: the consumer went away.
func FlushExit(outw *bufio.Writer, stderr io.Writer, code int) int {
	err := outw.Flush()
	if writers.IsBrokenPipe(err) {
		return ExitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	return code
}

// UsageExit prints the flag set usage to outw and returns code via FlushExit.
func UsageExit(fs *flag.FlagSet, outw *bufio.Writer, stderr io.Writer, code int) int {
	fs.SetOutput(outw)
	fs.Usage()
	return FlushExit(outw, stderr, code)
}

// OpenOutput resolves an --output value. Empty or "-" selects stdout with a
// no-op closer; anything else is created as a file, parent folders included.
func OpenOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return fh, fh.Close, nil
}
