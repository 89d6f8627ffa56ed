package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	fserrors "github.com/input-output-hk/forge-sync/errors"
)

// Sentinel errors, matched with errors.Is.

// ErrInvalidOptions is returned when Options are missing required fields.
var ErrInvalidOptions = errors.New("invalid options")

// ErrRepositoryNotFound is returned when no repository exists at the location.
var ErrRepositoryNotFound = errors.New("repository not found")

// ErrAuthRequired is returned when a remote needs credentials that were not provided.
var ErrAuthRequired = errors.New("authentication required")

// ErrAuthFailed is returned when the remote rejected the provided credentials.
var ErrAuthFailed = errors.New("authentication failed")

// ErrResolveFailed is returned when a revision or branch name does not resolve
// to a commit.
var ErrResolveFailed = errors.New("cannot resolve revision")

// WrapError wraps err with msg, preserving errors.Is matching.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps err with a formatted message, preserving errors.Is matching.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// classify maps go-git errors to the package sentinels and attaches an error
// code. Unrecognised errors are coded as execution failures.
func classify(err error) error {
	var sentinel error
	code := fserrors.CodeExecutionFailed

	switch {
	case errors.Is(err, git.ErrRepositoryNotExists), errors.Is(err, transport.ErrRepositoryNotFound):
		sentinel, code = ErrRepositoryNotFound, fserrors.CodeNotFound
	case errors.Is(err, transport.ErrAuthenticationRequired):
		sentinel = ErrAuthRequired
	case errors.Is(err, transport.ErrAuthorizationFailed):
		sentinel = ErrAuthFailed
	case errors.Is(err, plumbing.ErrReferenceNotFound), errors.Is(err, plumbing.ErrObjectNotFound):
		sentinel, code = ErrResolveFailed, fserrors.CodeNotFound
	}

	if sentinel != nil {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return fserrors.Wrap(err, code, "git operation failed")
}
