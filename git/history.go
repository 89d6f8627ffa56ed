package git

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	fserrors "github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/revision"
)

// DateLayout renders commit dates the way git's --date=rfc2822 does.
const DateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// HighestRevision resolves revID, a commit hash or branch name, to a Revision.
// An empty revID resolves HEAD.
func (r *Repo) HighestRevision(ctx context.Context, revID string) (revision.Revision, error) {
	hash, err := r.Resolve(ctx, revID)
	if err != nil {
		return revision.Revision{}, err
	}
	return revision.New(hash, r.options.RepositoryName), nil
}

// Metadata returns the commit metadata of rev. Parents are reported in commit
// order, first parent first.
func (r *Repo) Metadata(ctx context.Context, rev revision.Revision) (*revision.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rev.RepositoryName != r.options.RepositoryName {
		return nil, fserrors.Newf(fserrors.CodeInvalidInput,
			"revision %s does not belong to repository %q", rev, r.options.RepositoryName)
	}
	if !plumbing.IsHash(rev.RevID) {
		return nil, fserrors.Newf(fserrors.CodeInvalidInput, "revision %s is not a full commit hash", rev)
	}

	commit, err := r.repo.CommitObject(plumbing.NewHash(rev.RevID))
	if err != nil {
		return nil, WrapErrorf(classify(err), "failed to read commit %s", rev)
	}

	parents := make([]revision.Revision, 0, len(commit.ParentHashes))
	for _, p := range commit.ParentHashes {
		parents = append(parents, revision.New(p.String(), r.options.RepositoryName))
	}

	when := commit.Author.When
	fullAuthor := fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	normalized := when.In(time.UTC)

	r.logger.Debug("read commit metadata", "revision", rev.RevID, "parents", len(parents))

	return &revision.Metadata{
		ID:             commit.Hash.String(),
		Author:         commit.Author.Name,
		Date:           when.Format(DateLayout),
		Description:    commit.Message,
		Parents:        parents,
		FullAuthor:     &fullAuthor,
		NormalizedDate: &normalized,
	}, nil
}
