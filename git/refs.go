package git

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	fserrors "github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/history"
)

// Resolve resolves rev, a commit hash, branch, tag or other revision
// expression, to a full commit hash. An empty rev resolves HEAD. Branch names
// that only exist on the clone remote are resolved through it.
func (r *Repo) Resolve(ctx context.Context, rev string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rev == "" {
		rev = plumbing.HEAD.String()
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil && !plumbing.IsHash(rev) {
		hash, err = r.repo.ResolveRevision(plumbing.Revision(DefaultRemoteName + "/" + rev))
	}
	if err != nil {
		sentinel := ErrResolveFailed
		if r.empty() {
			sentinel = history.ErrNoHead
		}
		return "", fserrors.WrapWithContext(fmt.Errorf("%w: %w", sentinel, err),
			fserrors.CodeNotFound, "failed to resolve revision",
			map[string]interface{}{"repository": r.options.RepositoryName, "revision": rev})
	}
	return hash.String(), nil
}

// empty reports whether HEAD points at a branch with no commits, as in a
// freshly initialized repository.
func (r *Repo) empty() bool {
	_, err := r.repo.Head()
	return errors.Is(err, plumbing.ErrReferenceNotFound)
}

// Branches returns the short names of the local branches, sorted.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, WrapError(classify(err), "failed to list branches")
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate branches")
	}

	sort.Strings(names)
	return names, nil
}

// SetBranch points branch at hash, creating it if needed.
func (r *Repo) SetBranch(branch, hash string) error {
	if !plumbing.IsHash(hash) {
		return WrapErrorf(ErrInvalidOptions, "invalid commit hash %q", hash)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), plumbing.NewHash(hash))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return WrapErrorf(classify(err), "failed to set branch %q", branch)
	}
	return nil
}
