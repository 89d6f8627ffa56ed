package executor

import (
	"context"

	shlex "github.com/anmitsu/go-shlex"
	shellquote "github.com/kballard/go-shellquote"

	fserrors "github.com/input-output-hk/forge-sync/errors"
)

// Tool binds an Executor to a program and a fixed set of leading arguments,
// such as a configured "merge -q" oracle.
type Tool struct {
	exec    Executor
	program string
	args    []string
}

// NewTool creates a Tool running program with the given leading arguments.
func NewTool(exec Executor, program string, args ...string) *Tool {
	return &Tool{
		exec:    exec,
		program: program,
		args:    args,
	}
}

// ParseTool creates a Tool from a shell-like command string.
func ParseTool(exec Executor, command string) (*Tool, error) {
	words, err := shlex.Split(command, true)
	if err != nil {
		return nil, fserrors.Wrapf(err, fserrors.CodeInvalidInput, "cannot parse command %q", command)
	}
	if len(words) == 0 {
		return nil, fserrors.New(fserrors.CodeInvalidInput, "command is empty")
	}
	return NewTool(exec, words[0], words[1:]...), nil
}

// Program returns the program the tool runs.
func (t *Tool) Program() string {
	return t.program
}

// Args returns a copy of the tool's leading arguments.
func (t *Tool) Args() []string {
	return append([]string(nil), t.args...)
}

// Run executes the tool with its leading arguments followed by args.
func (t *Tool) Run(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	full := make([]string, 0, len(t.args)+len(args))
	full = append(full, t.args...)
	full = append(full, args...)
	return t.exec.Run(ctx, t.program, full, opts...)
}

// String returns the tool's command line.
func (t *Tool) String() string {
	return shellquote.Join(append([]string{t.program}, t.args...)...)
}
