// Package git reads revision history from git repositories through go-git.
//
// Repositories live on an fs.Filesystem so they can be opened from disk,
// cloned into memory for remote URLs, or built in memory under test. A *Repo
// implements history.Source.
package git

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
	"github.com/input-output-hk/forge-sync/git/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default object cache size in MiB.
	DefaultStorerCacheSize = 64

	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."

	// DefaultBranch is the branch walked when no branch is configured.
	DefaultBranch = "master"

	// DefaultRemoteName is the remote used for cloned repositories.
	DefaultRemoteName = "origin"
)

// Options configures how a repository is opened or created.
type Options struct {
	// FS is the filesystem holding all repository state. Required.
	FS fs.Filesystem

	// RepositoryName is the name revisions from this repository carry. Required.
	RepositoryName string

	// Workdir is the worktree root within FS. Defaults to ".".
	Workdir string

	// Bare selects a repository without a worktree.
	Bare bool

	// StorerCacheSize is the object cache size in MiB.
	StorerCacheSize int

	// Auth resolves credentials for remote URLs. Optional.
	Auth AuthProvider

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Validate checks that the Options are usable.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidOptions, "FS is required")
	}
	if o.RepositoryName == "" {
		return WrapError(ErrInvalidOptions, "RepositoryName is required")
	}
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidOptions, "StorerCacheSize cannot be negative")
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Repo is a git repository read as a revision history.
type Repo struct {
	repo    *git.Repository
	options Options
	logger  *slog.Logger
}

// storage builds the object storage and optional worktree for opts.
func storage(opts *Options) (*filesystem.Storage, gobilly.Filesystem, error) {
	billyFS, err := fsbridge.ToBillyFilesystem(opts.FS)
	if err != nil {
		return nil, nil, WrapError(err, "filesystem conversion failed")
	}

	scoped, err := billyFS.Chroot(opts.Workdir)
	if err != nil {
		return nil, nil, WrapErrorf(err, "failed to chroot to workdir %q", opts.Workdir)
	}

	if opts.Bare {
		return fsbridge.NewStorage(scoped, opts.StorerCacheSize), nil, nil
	}

	dotGit, err := scoped.Chroot(git.GitDirName)
	if err != nil {
		return nil, nil, WrapError(err, "failed to access .git directory")
	}
	return fsbridge.NewStorage(dotGit, opts.StorerCacheSize), scoped, nil
}

func prepare(opts *Options) (*filesystem.Storage, gobilly.Filesystem, error) {
	if opts == nil {
		return nil, nil, WrapError(ErrInvalidOptions, "options are required")
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()
	return storage(opts)
}

func newRepo(repo *git.Repository, opts *Options) *Repo {
	return &Repo{
		repo:    repo,
		options: *opts,
		logger:  opts.Logger.With("repository", opts.RepositoryName),
	}
}

// Init creates a new repository.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	st, wt, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(st, wt)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}
	return newRepo(repo, opts), nil
}

// Open opens an existing repository.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	st, wt, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(st, wt)
	if err != nil {
		return nil, WrapErrorf(classify(err), "failed to open repository %q", opts.RepositoryName)
	}
	return newRepo(repo, opts), nil
}

// Clone clones remoteURL without checking out a worktree. Only history is
// read from a clone, so the result is always bare.
func Clone(ctx context.Context, remoteURL string, opts *Options) (*Repo, error) {
	if remoteURL == "" {
		return nil, WrapError(ErrInvalidOptions, "remote URL cannot be empty")
	}
	if opts != nil {
		opts.Bare = true
	}
	st, _, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	cloneOpts := &git.CloneOptions{
		URL:        remoteURL,
		RemoteName: DefaultRemoteName,
		NoCheckout: true,
	}
	if opts.Auth != nil {
		method, authErr := opts.Auth.Method(remoteURL)
		if authErr != nil {
			return nil, WrapError(authErr, "failed to get authentication method")
		}
		cloneOpts.Auth = method
	}

	opts.Logger.Debug("cloning repository", "repository", opts.RepositoryName, "url", remoteURL)
	repo, err := git.CloneContext(ctx, st, nil, cloneOpts)
	if err != nil {
		return nil, WrapErrorf(classify(err), "failed to clone %q", remoteURL)
	}
	return newRepo(repo, opts), nil
}

// IsRemoteURL reports whether location names a remote repository rather than
// a local path.
func IsRemoteURL(location string) bool {
	if strings.Contains(location, "://") {
		return !strings.HasPrefix(location, "file://")
	}
	at := strings.Index(location, "@")
	colon := strings.Index(location, ":")
	return at > 0 && colon > at
}

// Load opens the repository at location. Remote URLs are cloned into memory.
// Local paths are opened in place, as a worktree when a .git directory is
// present and as a bare repository otherwise.
func Load(ctx context.Context, location, name string, auth AuthProvider, logger *slog.Logger) (*Repo, error) {
	if IsRemoteURL(location) {
		return Clone(ctx, location, &Options{
			FS:             billy.NewInMemoryFS(),
			RepositoryName: name,
			Auth:           auth,
			Logger:         logger,
		})
	}

	path, err := fs.GetAbs(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, err
	}
	hasDotGit, err := fs.Exists(filepath.Join(path, git.GitDirName))
	if err != nil {
		return nil, err
	}

	return Open(ctx, &Options{
		FS:             billy.NewOSFS(path),
		RepositoryName: name,
		Bare:           !hasDotGit,
		Logger:         logger,
	})
}

// RepositoryName returns the name revisions from this repository carry.
func (r *Repo) RepositoryName() string {
	return r.options.RepositoryName
}

// String returns a short description of the repository.
func (r *Repo) String() string {
	return fmt.Sprintf("git repository %q", r.options.RepositoryName)
}

// Raw returns the underlying go-git repository.
func (r *Repo) Raw() *git.Repository {
	return r.repo
}
