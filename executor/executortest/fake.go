// Package executortest provides a scriptable Executor for tests.
package executortest

import (
	"context"

	"github.com/input-output-hk/forge-sync/executor"
)

// Call records one invocation of Fake.Run.
type Call struct {
	Program string
	Args    []string
	Options executor.Options
}

// HandlerFunc produces the outcome of a command.
type HandlerFunc func(ctx context.Context, call Call) (*executor.Result, error)

// Fake implements executor.Executor by delegating to Handler and recording every call.
// A nil Handler succeeds with empty output.
type Fake struct {
	Handler HandlerFunc
	Calls   []Call
}

// Run implements executor.Executor.
func (f *Fake) Run(
	ctx context.Context,
	program string,
	args []string,
	opts ...executor.Option,
) (*executor.Result, error) {
	var o executor.Options
	for _, opt := range opts {
		opt(&o)
	}

	call := Call{Program: program, Args: append([]string(nil), args...), Options: o}
	f.Calls = append(f.Calls, call)

	if f.Handler == nil {
		return &executor.Result{}, nil
	}
	return f.Handler(ctx, call)
}

// Exit returns the result and error a real executor produces for a command
// that exited with code.
func Exit(call Call, code int, stdout string) (*executor.Result, error) {
	res := &executor.Result{Stdout: stdout, ExitCode: code}
	if code == 0 {
		return res, nil
	}
	return res, &executor.CommandError{
		Program:  call.Program,
		Args:     call.Args,
		Dir:      call.Options.WorkingDir,
		Stdout:   stdout,
		ExitCode: code,
	}
}
