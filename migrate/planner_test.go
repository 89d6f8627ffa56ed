package migrate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/fs/billy"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/history/historytest"
	"github.com/input-output-hk/forge-sync/migrate"
	"github.com/input-output-hk/forge-sync/revision"
)

// linear builds 1 <- 2 <- 3 <- 4 in internal.
func linear() *historytest.Graph {
	return historytest.NewGraph("internal").
		Add("1").
		Add("2", "1").
		Add("3", "2").
		Add("4", "3")
}

func newPlanner(g *historytest.Graph, store db.Store, opts ...migrate.Option) *migrate.Planner {
	return migrate.NewPlanner(history.NewWalker(g, nil), "public", store, opts...)
}

func TestPlan_SinceEquivalence(t *testing.T) {
	g := linear()
	store := db.New(billy.NewInMemoryFS())
	eq, err := db.NewEquivalence(g.Rev("2"), revision.New("1002", "public"))
	require.NoError(t, err)
	store.NoteEquivalence(eq)

	plan, err := newPlanner(g, store).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "internal", plan.FromRepository)
	assert.Equal(t, "public", plan.ToRepository)
	require.True(t, plan.HasEquivalence)
	assert.True(t, plan.LastEquivalence.Equal(eq))
	assert.Equal(t, g.Revs("3", "4"), plan.Revisions)
	assert.False(t, plan.Empty())

	require.NotNil(t, plan.Metadata)
	assert.Equal(t, "3, 4", plan.Metadata.ID)
	assert.Equal(t, "description for 3\n-------------\ndescription for 4", plan.Metadata.Description)
}

func TestPlan_NothingPending(t *testing.T) {
	g := linear()
	store := db.New(billy.NewInMemoryFS())
	eq, err := db.NewEquivalence(g.Rev("4"), revision.New("1004", "public"))
	require.NoError(t, err)
	store.NoteEquivalence(eq)

	plan, err := newPlanner(g, store).Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Nil(t, plan.Metadata)
	assert.True(t, plan.HasEquivalence)
}

func TestPlan_NoEquivalence(t *testing.T) {
	g := linear()
	plan, err := newPlanner(g, db.New(billy.NewInMemoryFS())).Plan(context.Background())
	require.NoError(t, err)
	assert.False(t, plan.HasEquivalence)
	assert.Equal(t, g.Revs("1", "2", "3", "4"), plan.Revisions)
}

func TestPlan_EmptyRepository(t *testing.T) {
	g := historytest.NewGraph("internal")
	plan, err := newPlanner(g, db.New(billy.NewInMemoryFS())).Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.False(t, plan.HasEquivalence)
}

func TestPlan_Scrubbers(t *testing.T) {
	g := linear().Describe("4", "author", "Secret change\n\nReviewers: bob")
	store := db.New(billy.NewInMemoryFS())
	eq, err := db.NewEquivalence(g.Rev("3"), revision.New("1003", "public"))
	require.NoError(t, err)
	store.NoteEquivalence(eq)

	publish := revision.ScrubberFunc(func(md revision.Metadata) revision.Metadata {
		md.Description = strings.Replace(md.Description, "Secret", "Public", 1)
		return md
	})

	plan, err := newPlanner(g, store, migrate.WithScrubbers(publish)).Plan(context.Background())
	require.NoError(t, err)
	require.NotNil(t, plan.Metadata)
	assert.Equal(t, "Public change\n", plan.Metadata.Description)
}

func TestPlan_IntoItself(t *testing.T) {
	g := historytest.NewGraph("public").Add("1")
	_, err := newPlanner(g, db.New(billy.NewInMemoryFS())).Plan(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestComplete(t *testing.T) {
	g := linear()
	store := db.New(billy.NewInMemoryFS())
	p := newPlanner(g, store)
	to := revision.New("1004", "public")

	added, err := p.Complete(g.Revs("3", "4"), to)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []revision.Revision{to}, store.FindEquivalences(g.Rev("4"), "public"))

	added, err = p.Complete(g.Revs("4", "3"), to)
	require.NoError(t, err)
	assert.False(t, added, "the same migration is recorded once")
	assert.Len(t, store.Migrations(), 1)
	assert.Len(t, store.Equivalences(), 1)

	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestComplete_Invalid(t *testing.T) {
	g := linear()
	p := newPlanner(g, db.New(billy.NewInMemoryFS()))

	tests := []struct {
		name string
		from []revision.Revision
		to   revision.Revision
	}{
		{"no revisions", nil, revision.New("1", "public")},
		{"wrong destination", g.Revs("4"), revision.New("1", "elsewhere")},
		{"same repository", []revision.Revision{revision.New("9", "public")}, revision.New("1", "public")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := p.Complete(tt.from, tt.to)
			require.Error(t, err)
			assert.False(t, added)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}
