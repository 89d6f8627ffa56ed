// Package history walks revision graphs. Starting from branch heads it
// discovers the revisions not yet migrated to another repository, stopping at
// revisions recorded as equivalent in the equivalence store.
package history

import (
	"context"
	"errors"

	"github.com/input-output-hk/forge-sync/revision"
)

// ErrNoHead reports that a repository or branch has no revisions yet.
// Walks treat it as absence rather than failure.
var ErrNoHead = errors.New("no head revision")

// Source retrieves revisions and their metadata from one repository.
type Source interface {
	// RepositoryName returns the configured name of the repository.
	RepositoryName() string

	// HighestRevision resolves revID, a revision identifier or branch name, to
	// a Revision. An empty revID resolves to the repository's default head.
	// A repository without revisions returns an error wrapping ErrNoHead.
	HighestRevision(ctx context.Context, revID string) (revision.Revision, error)

	// Metadata returns the metadata of rev, with parents in the order the VCS
	// reports them.
	Metadata(ctx context.Context, rev revision.Revision) (*revision.Metadata, error)
}
