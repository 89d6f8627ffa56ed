package history

import (
	"context"

	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/revision"
)

// Matcher decides whether a revision is already known to have an equivalent,
// which ends the walk along that path.
type Matcher interface {
	IsKnownEquivalent(ctx context.Context, rev revision.Revision) (bool, error)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(ctx context.Context, rev revision.Revision) (bool, error)

// IsKnownEquivalent implements Matcher.
func (f MatcherFunc) IsKnownEquivalent(ctx context.Context, rev revision.Revision) (bool, error) {
	return f(ctx, rev)
}

// EquivalenceLookup finds the equivalence recorded for a revision, if any.
type EquivalenceLookup interface {
	LookupEquivalence(ctx context.Context, rev revision.Revision) (db.Equivalence, bool, error)
}

// EquivalenceMatcher matches revisions that have an equivalent in
// OtherRepository according to Store.
type EquivalenceMatcher struct {
	Store           db.Store
	OtherRepository string
}

// NewEquivalenceMatcher returns a matcher against otherRepository in store.
func NewEquivalenceMatcher(store db.Store, otherRepository string) *EquivalenceMatcher {
	return &EquivalenceMatcher{Store: store, OtherRepository: otherRepository}
}

// IsKnownEquivalent implements Matcher.
func (m *EquivalenceMatcher) IsKnownEquivalent(_ context.Context, rev revision.Revision) (bool, error) {
	return len(m.Store.FindEquivalences(rev, m.OtherRepository)) > 0, nil
}

// LookupEquivalence implements EquivalenceLookup. When several counterparts
// are recorded the first in store order is used.
func (m *EquivalenceMatcher) LookupEquivalence(
	_ context.Context,
	rev revision.Revision,
) (db.Equivalence, bool, error) {
	others := m.Store.FindEquivalences(rev, m.OtherRepository)
	if len(others) == 0 {
		return db.Equivalence{}, false, nil
	}
	return db.Equivalence{Rev1: rev, Rev2: others[0]}, true, nil
}
