package history

import (
	"context"
	"io"
	"log/slog"

	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/revision"
)

// Walker traverses the revision graph of one Source breadth first.
// Parents are visited in the order the source reports them and every revision
// is visited at most once.
type Walker struct {
	Source Source

	// Branches are the branches whose tips start a walk. Empty means the
	// source's default head.
	Branches []string

	logger *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLogger sets the logger used to record pruning decisions.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker returns a Walker over source starting from branches.
func NewWalker(source Source, branches []string, opts ...WalkerOption) *Walker {
	w := &Walker{Source: source, Branches: branches}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Walker) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return w.logger
}

// FindHeadRevisions returns the tip of every configured branch, or the
// default head when no branches are configured. Branches without revisions
// are skipped, so an empty repository has no heads.
func (w *Walker) FindHeadRevisions(ctx context.Context) ([]revision.Revision, error) {
	branches := w.Branches
	if len(branches) == 0 {
		branches = []string{""}
	}

	heads := make([]revision.Revision, 0, len(branches))
	for _, b := range branches {
		head, err := w.Source.HighestRevision(ctx, b)
		switch {
		case errors.Is(err, ErrNoHead):
			w.log().Debug("branch has no head", "repository", w.Source.RepositoryName(), "branch", b)
			continue
		case err != nil && b == "":
			return nil, w.sourceError(err, "failed to resolve default head", b)
		case err != nil:
			return nil, w.sourceError(err, "failed to resolve branch head", b)
		}
		heads = append(heads, head)
	}
	return heads, nil
}

// FindRevisions returns every revision reachable from the heads that is not
// known-equivalent and not only reachable through a known-equivalent
// revision, in breadth-first order.
func (w *Walker) FindRevisions(ctx context.Context, matcher Matcher) ([]revision.Revision, error) {
	revs, _, err := w.FindRevisionsSinceEquivalence(ctx, matcher)
	return revs, err
}

// FindRevisionsSinceEquivalence behaves like FindRevisions and also returns the
// known-equivalent revisions at which the walk stopped, in breadth-first order.
func (w *Walker) FindRevisionsSinceEquivalence(
	ctx context.Context,
	matcher Matcher,
) (revs, matched []revision.Revision, err error) {
	heads, err := w.FindHeadRevisions(ctx)
	if err != nil {
		return nil, nil, err
	}

	err = w.walk(ctx, heads, func(rev revision.Revision) (step, error) {
		known, err := matcher.IsKnownEquivalent(ctx, rev)
		if err != nil {
			return prune, errors.WrapWithContext(err, errors.CodeExecutionFailed,
				"failed to match revision", map[string]interface{}{"revision": rev.String()})
		}
		if known {
			w.log().Debug("pruning at known equivalent", "revision", rev.String())
			matched = append(matched, rev)
			return prune, nil
		}
		revs = append(revs, rev)
		return expand, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return revs, matched, nil
}

// FindLastEquivalence walks back from start and returns the first equivalence
// found in breadth-first order. It returns false when no ancestor of start,
// start included, has an equivalence.
func (w *Walker) FindLastEquivalence(
	ctx context.Context,
	start revision.Revision,
	lookup EquivalenceLookup,
) (db.Equivalence, bool, error) {
	var (
		found db.Equivalence
		ok    bool
	)
	err := w.walk(ctx, []revision.Revision{start}, func(rev revision.Revision) (step, error) {
		eq, hit, err := lookup.LookupEquivalence(ctx, rev)
		if err != nil {
			return stop, errors.WrapWithContext(err, errors.CodeExecutionFailed,
				"failed to look up equivalence", map[string]interface{}{"revision": rev.String()})
		}
		if hit {
			found, ok = eq, true
			return stop, nil
		}
		return expand, nil
	})
	if err != nil {
		return db.Equivalence{}, false, err
	}
	return found, ok, nil
}

// step tells walk what to do after visiting a revision.
type step int

const (
	prune  step = iota // do not enqueue parents
	expand             // enqueue parents
	stop               // end the traversal
)

// walk runs a breadth-first traversal from starts, calling visit once per
// revision. Metadata is fetched only for expanded revisions.
func (w *Walker) walk(
	ctx context.Context,
	starts []revision.Revision,
	visit func(revision.Revision) (step, error),
) error {
	seen := make(map[revision.Revision]struct{}, len(starts))
	queue := make([]revision.Revision, 0, len(starts))
	for _, s := range starts {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		rev := queue[0]
		queue = queue[1:]

		next, err := visit(rev)
		if err != nil {
			return err
		}
		if next == stop {
			return nil
		}
		if next == prune {
			continue
		}

		md, err := w.Source.Metadata(ctx, rev)
		if err != nil {
			return w.sourceError(err, "failed to retrieve revision metadata", rev.String())
		}
		for _, p := range md.Parents {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return nil
}

func (w *Walker) sourceError(err error, msg, subject string) error {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.CodeExecutionFailed
	}
	return errors.WrapWithContext(err, code, msg, map[string]interface{}{
		"repository": w.Source.RepositoryName(),
		"revision":   subject,
	})
}
