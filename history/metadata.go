package history

import (
	"context"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/revision"
)

// DetermineMetadata fetches the metadata of every revision in revs from the
// source of its repository, scrubs it and concatenates the results in order.
// The Arcanist review trailer is always stripped after the given scrubbers ran.
func DetermineMetadata(
	ctx context.Context,
	sources []Source,
	revs []revision.Revision,
	scrubbers ...revision.Scrubber,
) (revision.Metadata, error) {
	if len(revs) == 0 {
		return revision.Metadata{}, errors.New(errors.CodeInvalidInput, "no revisions to describe")
	}

	byName := make(map[string]Source, len(sources))
	for _, s := range sources {
		byName[s.RepositoryName()] = s
	}

	all := append(append([]revision.Scrubber(nil), scrubbers...), revision.ArcanistScrubber)

	mds := make([]revision.Metadata, 0, len(revs))
	for _, rev := range revs {
		src, ok := byName[rev.RepositoryName]
		if !ok {
			return revision.Metadata{}, errors.Newf(errors.CodeNotFound,
				"no repository named %q for revision %s", rev.RepositoryName, rev)
		}
		md, err := src.Metadata(ctx, rev)
		if err != nil {
			code := errors.GetCode(err)
			if code == errors.CodeUnknown {
				code = errors.CodeExecutionFailed
			}
			return revision.Metadata{}, errors.WrapWithContext(err, code,
				"failed to retrieve revision metadata", map[string]interface{}{"revision": rev.String()})
		}
		mds = append(mds, revision.Scrub(*md, all...))
	}

	return revision.Concatenate(mds)
}
