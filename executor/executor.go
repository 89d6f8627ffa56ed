// Package executor runs external programs on behalf of forge-sync: the diff and
// merge oracles used by the codebase merger and the VCS command line clients
// used by revision histories. Commands honour context cancellation; no timeouts
// or retries are applied.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	fserrors "github.com/input-output-hk/forge-sync/errors"
)

// Result holds the captured output of a command that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor defines the interface for command execution.
//
// Run executes program with args and returns its captured output. A command
// that exits with a non-zero status returns both the Result and a
// *CommandError. A command that cannot be started returns an EXECUTION_FAILED
// error wrapping a *CommandError whose ExitCode is -1.
type Executor interface {
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures a single command invocation.
type Options struct {
	// WorkingDir is the directory the command runs in. Empty means the current directory.
	WorkingDir string

	// Env holds environment variables appended to the current environment.
	Env map[string]string

	// Input is written to the command's stdin.
	Input string

	// StdoutWriter and StderrWriter receive a copy of the output as it is produced.
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithInput sets the command's stdin.
func WithInput(input string) Option {
	return func(o *Options) {
		o.Input = input
	}
}

// WithStdoutWriter tees stdout to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter tees stderr to w.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// CommandExecutor implements Executor with os/exec.
type CommandExecutor struct {
	logger *slog.Logger
}

// CommandExecutorOption configures a CommandExecutor.
type CommandExecutorOption func(*CommandExecutor)

// WithLogger sets the logger used to record every command at debug level.
func WithLogger(logger *slog.Logger) CommandExecutorOption {
	return func(c *CommandExecutor) {
		c.logger = logger
	}
}

// New creates a CommandExecutor.
func New(opts ...CommandExecutorOption) *CommandExecutor {
	c := &CommandExecutor{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run implements Executor.
func (c *CommandExecutor) Run(
	ctx context.Context,
	program string,
	args []string,
	opts ...Option,
) (*Result, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	cmd := exec.CommandContext(ctx, program, args...)
	setupCommand(cmd, options)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeWriter(&stdoutBuf, options.StdoutWriter)
	cmd.Stderr = teeWriter(&stderrBuf, options.StderrWriter)

	c.logger.Debug("running command",
		"program", program,
		"args", args,
		"dir", options.WorkingDir)

	err := cmd.Run()
	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(err),
	}

	if err == nil {
		return result, nil
	}

	cmdErr := &CommandError{
		Program:  program,
		Args:     append([]string(nil), args...),
		Dir:      options.WorkingDir,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
		Err:      err,
	}

	if !cmdErr.Exited() {
		c.logger.Debug("command could not run", "program", program, "error", err)
		return nil, fserrors.WrapWithContext(cmdErr, fserrors.CodeExecutionFailed,
			"failed to run command", map[string]interface{}{"program": program})
	}

	c.logger.Debug("command exited with non-zero status",
		"program", program,
		"exit_code", result.ExitCode)
	return result, cmdErr
}

// setupCommand configures the exec.Cmd with working directory, environment, and input.
func setupCommand(cmd *exec.Cmd, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	if options.Input != "" {
		cmd.Stdin = strings.NewReader(options.Input)
	}
}

func teeWriter(buf *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}

// exitCode returns 0 for success, the process exit status when the process
// exited on its own, and -1 otherwise (not started, killed by a signal).
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
