package executor

import (
	"errors"
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// CommandError describes a command that did not succeed.
type CommandError struct {
	Program  string
	Args     []string
	Dir      string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Error renders the shell-quoted command line, its exit status and any
// captured output.
func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command %q", e.CommandLine())
	if e.Dir != "" {
		fmt.Fprintf(&b, " in %s", e.Dir)
	}
	if e.Exited() {
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	} else {
		fmt.Fprintf(&b, " failed: %v", e.Err)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "\nstdout: %s", s)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\nstderr: %s", s)
	}
	return b.String()
}

// Unwrap returns the underlying os/exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine returns the command as it could be typed into a shell.
func (e *CommandError) CommandLine() string {
	return shellquote.Join(append([]string{e.Program}, e.Args...)...)
}

// Exited reports whether the process ran and exited on its own. A non-zero
// exit status of an oracle is data; anything else is an execution failure.
func (e *CommandError) Exited() bool {
	return e.ExitCode >= 0
}

// IsExitError reports whether err is a *CommandError for a process that ran
// and exited with a non-zero status.
func IsExitError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Exited()
}
