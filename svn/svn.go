// Package svn reads revision history from Subversion repositories by running
// svn log --xml. A *History implements history.Source.
package svn

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	fserrors "github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/executor"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/revision"
)

// DefaultProgram is the svn client invoked when none is configured.
const DefaultProgram = "svn"

// History is the revision history of one Subversion repository.
type History struct {
	name   string
	url    string
	tool   *executor.Tool
	logger *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		h.logger = logger
	}
}

// WithTool replaces the svn client invocation.
func WithTool(tool *executor.Tool) Option {
	return func(h *History) {
		h.tool = tool
	}
}

// New returns the history of the repository at url, known as name.
func New(name, url string, exec executor.Executor, opts ...Option) *History {
	h := &History{
		name:   name,
		url:    url,
		tool:   executor.NewTool(exec, DefaultProgram, "--no-auth-cache"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RepositoryName returns the configured repository name.
func (h *History) RepositoryName() string {
	return h.name
}

// HighestRevision returns the newest revision at or below revID. An empty
// revID resolves HEAD. Subversion may return a lower revision than the one
// asked for when revID did not touch the repository path.
func (h *History) HighestRevision(ctx context.Context, revID string) (revision.Revision, error) {
	if revID == "" {
		revID = "HEAD"
	}

	entries, err := h.log(ctx, revID, 1)
	if err != nil {
		return revision.Revision{}, err
	}
	if len(entries) == 0 {
		return revision.Revision{}, fserrors.Wrapf(history.ErrNoHead, fserrors.CodeNotFound,
			"no revision at or below %s in repository %q", revID, h.name)
	}

	rev := revision.New(entries[0].Revision, h.name)
	if rev.RevID != revID {
		h.logger.Debug("resolved revision differs from request", "requested", revID, "resolved", rev.RevID)
	}
	return rev, nil
}

// Metadata returns the metadata of rev. Its single parent, if any, is the next
// older revision in the log.
func (h *History) Metadata(ctx context.Context, rev revision.Revision) (*revision.Metadata, error) {
	if rev.RepositoryName != h.name {
		return nil, fserrors.Newf(fserrors.CodeInvalidInput,
			"revision %s is in repository %q instead of %q", rev, rev.RepositoryName, h.name)
	}

	entries, err := h.log(ctx, rev.RevID, 2)
	if err != nil {
		return nil, err
	}
	metadata := ParseMetadata(entries, h.name)
	if len(metadata) == 0 {
		return nil, fserrors.Newf(fserrors.CodeNotFound, "no log entry for revision %s", rev)
	}
	return &metadata[0], nil
}

func (h *History) log(ctx context.Context, revID string, limit int) ([]LogEntry, error) {
	args := []string{"log", "--xml", "-l", strconv.Itoa(limit), "-r", revID + ":1", h.url}
	res, err := h.tool.Run(ctx, args)
	if err != nil {
		return nil, fserrors.WrapWithContext(err, fserrors.CodeExecutionFailed, "svn log failed",
			map[string]interface{}{"repository": h.name, "revision": revID})
	}

	entries, err := ParseLog(strings.NewReader(res.Stdout))
	if err != nil {
		return nil, fserrors.WrapWithContext(err, fserrors.CodeExecutionFailed, "could not parse svn log",
			map[string]interface{}{"repository": h.name, "revision": revID})
	}
	return entries, nil
}
