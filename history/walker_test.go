package history_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/fs/billy"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/history/historytest"
	"github.com/input-output-hk/forge-sync/revision"
)

func newStore(t *testing.T, pairs ...[2]revision.Revision) *db.DB {
	t.Helper()
	store := db.New(billy.NewInMemoryFS())
	for _, p := range pairs {
		eq, err := db.NewEquivalence(p[0], p[1])
		require.NoError(t, err)
		store.NoteEquivalence(eq)
	}
	return store
}

// diamond builds 1 <- 2 <- {3a, 3b} <- 4 in repo2.
func diamond() *historytest.Graph {
	return historytest.NewGraph("repo2").
		Add("1").
		Add("2", "1").
		Add("3a", "2").
		Add("3b", "2").
		Add("4", "3a", "3b")
}

func TestFindLastEquivalence_ScenarioC(t *testing.T) {
	g := diamond()
	store := newStore(t, [2]revision.Revision{revision.New("1002", "repo1"), g.Rev("2")})
	w := history.NewWalker(g, nil)

	eq, ok, err := w.FindLastEquivalence(context.Background(), g.Rev("4"),
		history.NewEquivalenceMatcher(store, "repo1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, eq.Equal(db.Equivalence{Rev1: revision.New("1002", "repo1"), Rev2: g.Rev("2")}))
	assert.Zero(t, g.MetadataCalls["2"], "the walk stops at the equivalence")
}

func TestFindLastEquivalence_ScenarioD(t *testing.T) {
	g := diamond().Add("5", "4")
	store := newStore(t, [2]revision.Revision{revision.New("1005", "repo1"), g.Rev("5")})
	w := history.NewWalker(g, nil)

	_, ok, err := w.FindLastEquivalence(context.Background(), g.Rev("4"),
		history.NewEquivalenceMatcher(store, "repo1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindLastEquivalence_BreadthFirstOrder(t *testing.T) {
	g := diamond()
	store := newStore(t,
		[2]revision.Revision{revision.New("r3b", "repo1"), g.Rev("3b")},
		[2]revision.Revision{revision.New("r2", "repo1"), g.Rev("2")},
	)
	w := history.NewWalker(g, nil)

	eq, ok, err := w.FindLastEquivalence(context.Background(), g.Rev("4"),
		history.NewEquivalenceMatcher(store, "repo1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, g.Rev("3b"), eq.Rev1)
	assert.Equal(t, revision.New("r3b", "repo1"), eq.Rev2)
}

func TestFindLastEquivalence_AtStart(t *testing.T) {
	g := diamond()
	store := newStore(t, [2]revision.Revision{revision.New("x", "repo1"), g.Rev("4")})
	w := history.NewWalker(g, nil)

	eq, ok, err := w.FindLastEquivalence(context.Background(), g.Rev("4"),
		history.NewEquivalenceMatcher(store, "repo1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, g.Rev("4"), eq.Rev1)
	assert.Empty(t, g.MetadataCalls)
}

func TestFindRevisions(t *testing.T) {
	tests := []struct {
		name    string
		known   []string
		want    []string
		matched []string
	}{
		{"nothing known", nil, []string{"4", "3a", "3b", "2", "1"}, nil},
		{"prune at merge base", []string{"2"}, []string{"4", "3a", "3b"}, []string{"2"}},
		{"prune one side", []string{"3a"}, []string{"4", "3b", "2", "1"}, []string{"3a"}},
		{"head known", []string{"4"}, nil, []string{"4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := diamond()
			var pairs [][2]revision.Revision
			for _, id := range tt.known {
				pairs = append(pairs, [2]revision.Revision{revision.New("k"+id, "repo1"), g.Rev(id)})
			}
			matcher := history.NewEquivalenceMatcher(newStore(t, pairs...), "repo1")
			w := history.NewWalker(g, nil)

			revs, matched, err := w.FindRevisionsSinceEquivalence(context.Background(), matcher)
			require.NoError(t, err)
			assert.Equal(t, g.Revs(tt.want...), nilIfEmpty(revs))
			assert.Equal(t, g.Revs(tt.matched...), nilIfEmpty(matched))

			plain, err := w.FindRevisions(context.Background(), matcher)
			require.NoError(t, err)
			assert.Equal(t, revs, plain)
		})
	}
}

func nilIfEmpty(revs []revision.Revision) []revision.Revision {
	if len(revs) == 0 {
		return []revision.Revision{}
	}
	return revs
}

func TestFindRevisions_VisitsEachRevisionOnce(t *testing.T) {
	g := diamond()
	w := history.NewWalker(g, nil)
	never := history.MatcherFunc(func(context.Context, revision.Revision) (bool, error) { return false, nil })

	revs, err := w.FindRevisions(context.Background(), never)
	require.NoError(t, err)
	assert.Len(t, revs, 5)
	for id, n := range g.MetadataCalls {
		assert.Equal(t, 1, n, "metadata of %s fetched %d times", id, n)
	}
}

func TestFindRevisions_Branches(t *testing.T) {
	g := historytest.NewGraph("repo2").
		Add("1").
		Add("2", "1").
		Add("f1", "1").
		Branch("main", "2").
		Branch("feature", "f1").
		Head("2")
	never := history.MatcherFunc(func(context.Context, revision.Revision) (bool, error) { return false, nil })

	heads, err := history.NewWalker(g, []string{"main", "feature"}).FindHeadRevisions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, g.Revs("2", "f1"), heads)

	revs, err := history.NewWalker(g, []string{"main", "feature"}).FindRevisions(context.Background(), never)
	require.NoError(t, err)
	assert.Equal(t, g.Revs("2", "f1", "1"), revs)

	revs, err = history.NewWalker(g, nil).FindRevisions(context.Background(), never)
	require.NoError(t, err)
	assert.Equal(t, g.Revs("2", "1"), revs)
}

func TestFindRevisions_MetadataFailureIsFatal(t *testing.T) {
	boom := stderrors.New("svn: connection refused")
	g := diamond().Fail("3b", boom)
	never := history.MatcherFunc(func(context.Context, revision.Revision) (bool, error) { return false, nil })

	revs, err := history.NewWalker(g, nil).FindRevisions(context.Background(), never)
	require.Error(t, err)
	assert.Nil(t, revs, "no partial result")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, errors.CodeExecutionFailed, errors.GetCode(err))
}

func TestFindHeadRevisions_UnknownBranch(t *testing.T) {
	g := diamond()
	_, err := history.NewWalker(g, []string{"nope"}).FindHeadRevisions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestFindRevisions_EmptyRepository(t *testing.T) {
	ctx := context.Background()
	g := historytest.NewGraph("repo2")
	matcher := history.NewEquivalenceMatcher(newStore(t), "repo1")

	for _, branches := range [][]string{nil, {"master"}} {
		w := history.NewWalker(g, branches)

		heads, err := w.FindHeadRevisions(ctx)
		require.NoError(t, err)
		assert.Empty(t, heads)

		revs, matched, err := w.FindRevisionsSinceEquivalence(ctx, matcher)
		require.NoError(t, err)
		assert.Empty(t, revs)
		assert.Empty(t, matched)

		revs, err = w.FindRevisions(ctx, matcher)
		require.NoError(t, err)
		assert.Empty(t, revs)
	}

	_, err := g.HighestRevision(ctx, "")
	assert.ErrorIs(t, err, history.ErrNoHead)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestFindRevisions_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	never := history.MatcherFunc(func(context.Context, revision.Revision) (bool, error) { return false, nil })

	_, err := history.NewWalker(diamond(), nil).FindRevisions(ctx, never)
	require.ErrorIs(t, err, context.Canceled)
}
