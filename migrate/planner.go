// Package migrate plans and records migrations of revisions from one
// repository to another. A Planner finds the last revision already carried
// across, collects what has landed since and records completed migrations in
// the equivalence store.
package migrate

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/revision"
)

// Plan is the pending work for one migration direction.
type Plan struct {
	FromRepository string
	ToRepository   string

	// LastEquivalence is the newest recorded equivalence reachable from the
	// first head. Valid only when HasEquivalence is true.
	LastEquivalence db.Equivalence
	HasEquivalence  bool

	// Revisions are the revisions not yet migrated, oldest first.
	Revisions []revision.Revision

	// Metadata describes Revisions as one change. Nil when the plan is empty.
	Metadata *revision.Metadata
}

// Empty reports whether nothing is pending.
func (p *Plan) Empty() bool {
	return len(p.Revisions) == 0
}

// Planner plans migrations from the repository walked by From into ToRepository.
type Planner struct {
	From         *history.Walker
	ToRepository string
	Store        db.Store

	// Scrubbers run over the pending metadata before it is concatenated.
	Scrubbers []revision.Scrubber

	logger *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithScrubbers adds metadata scrubbers.
func WithScrubbers(scrubbers ...revision.Scrubber) Option {
	return func(p *Planner) {
		p.Scrubbers = append(p.Scrubbers, scrubbers...)
	}
}

// NewPlanner returns a Planner migrating from the walker's source into toRepository.
func NewPlanner(from *history.Walker, toRepository string, store db.Store, opts ...Option) *Planner {
	p := &Planner{
		From:         from,
		ToRepository: toRepository,
		Store:        store,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan finds the last equivalence and the revisions landed since it.
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	from := p.From.Source.RepositoryName()
	if from == p.ToRepository {
		return nil, errors.Newf(errors.CodeInvalidInput, "cannot migrate repository %q into itself", from)
	}

	matcher := history.NewEquivalenceMatcher(p.Store, p.ToRepository)
	plan := &Plan{FromRepository: from, ToRepository: p.ToRepository}

	heads, err := p.From.FindHeadRevisions(ctx)
	if err != nil {
		return nil, err
	}
	if len(heads) > 0 {
		plan.LastEquivalence, plan.HasEquivalence, err = p.From.FindLastEquivalence(ctx, heads[0], matcher)
		if err != nil {
			return nil, err
		}
	}

	revs, _, err := p.From.FindRevisionsSinceEquivalence(ctx, matcher)
	if err != nil {
		return nil, err
	}
	slices.Reverse(revs)
	plan.Revisions = revs

	if len(revs) > 0 {
		md, err := history.DetermineMetadata(ctx, []history.Source{p.From.Source}, revs, p.Scrubbers...)
		if err != nil {
			return nil, err
		}
		plan.Metadata = &md
	}

	p.logger.Info("planned migration",
		"from", from, "to", p.ToRepository,
		"pending", len(plan.Revisions), "hasEquivalence", plan.HasEquivalence)
	return plan, nil
}

// Complete records that from, oldest first, was submitted to the destination
// as to. The first time a migration is recorded the newest from-revision is
// also noted as equivalent to to. It reports whether the migration was new.
func (p *Planner) Complete(from []revision.Revision, to revision.Revision) (bool, error) {
	if len(from) == 0 {
		return false, errors.New(errors.CodeInvalidInput, "migration has no source revisions")
	}
	if to.RepositoryName != p.ToRepository {
		return false, errors.Newf(errors.CodeInvalidInput,
			"revision %s is not in destination repository %q", to, p.ToRepository)
	}

	eq, err := db.NewEquivalence(from[len(from)-1], to)
	if err != nil {
		return false, err
	}

	if !p.Store.NoteMigration(db.SubmittedMigration{FromRevisions: from, ToRevision: to}) {
		return false, nil
	}
	p.Store.NoteEquivalence(eq)
	p.logger.Info("recorded migration", "equivalence", eq.String(), "revisions", len(from))
	return true, nil
}
