package db

import (
	"fmt"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/revision"
)

// Equivalence records that two revisions in different repositories hold
// equivalent content. The pair is unordered.
type Equivalence struct {
	Rev1 revision.Revision `json:"rev1"`
	Rev2 revision.Revision `json:"rev2"`
}

// NewEquivalence returns the equivalence between a and b.
// Both revisions must belong to different repositories.
func NewEquivalence(a, b revision.Revision) (Equivalence, error) {
	eq := Equivalence{Rev1: a, Rev2: b}
	if err := eq.validate(); err != nil {
		return Equivalence{}, err
	}
	return eq, nil
}

func (e Equivalence) validate() error {
	for _, r := range []revision.Revision{e.Rev1, e.Rev2} {
		if r.RevID == "" || r.RepositoryName == "" {
			return errors.Newf(errors.CodeInvalidInput, "equivalence revision %s is incomplete", r)
		}
	}
	if e.Rev1.RepositoryName == e.Rev2.RepositoryName {
		return errors.Newf(errors.CodeInvalidInput,
			"equivalence between %s and %s is within repository %q",
			e.Rev1, e.Rev2, e.Rev1.RepositoryName)
	}
	return nil
}

// Equal reports whether e and o relate the same two revisions, in either order.
func (e Equivalence) Equal(o Equivalence) bool {
	return (e.Rev1 == o.Rev1 && e.Rev2 == o.Rev2) ||
		(e.Rev1 == o.Rev2 && e.Rev2 == o.Rev1)
}

// HasRevision reports whether rev is one side of e.
func (e Equivalence) HasRevision(rev revision.Revision) bool {
	return e.Rev1 == rev || e.Rev2 == rev
}

// OtherRevision returns the counterpart of rev, or false if rev is not part of e.
func (e Equivalence) OtherRevision(rev revision.Revision) (revision.Revision, bool) {
	switch rev {
	case e.Rev1:
		return e.Rev2, true
	case e.Rev2:
		return e.Rev1, true
	default:
		return revision.Revision{}, false
	}
}

// String implements fmt.Stringer.
func (e Equivalence) String() string {
	return fmt.Sprintf("%s == %s", e.Rev1, e.Rev2)
}

// SubmittedMigration records that the content of FromRevisions was submitted
// to the destination as ToRevision. FromRevisions is compared as a set.
type SubmittedMigration struct {
	FromRevisions []revision.Revision `json:"fromRevisions"`
	ToRevision    revision.Revision   `json:"toRevision"`
}

// Equal reports whether m and o record the same migration.
func (m SubmittedMigration) Equal(o SubmittedMigration) bool {
	if m.ToRevision != o.ToRevision {
		return false
	}
	return sameSet(m.FromRevisions, o.FromRevisions)
}

// String implements fmt.Stringer.
func (m SubmittedMigration) String() string {
	return fmt.Sprintf("[%s] -> %s", revision.Join(m.FromRevisions), m.ToRevision)
}

func (m SubmittedMigration) validate() error {
	if len(m.FromRevisions) == 0 {
		return errors.New(errors.CodeInvalidInput, "migration has no source revisions")
	}
	for _, r := range append([]revision.Revision{m.ToRevision}, m.FromRevisions...) {
		if r.RevID == "" || r.RepositoryName == "" {
			return errors.Newf(errors.CodeInvalidInput, "migration revision %s is incomplete", r)
		}
	}
	return nil
}

func sameSet(a, b []revision.Revision) bool {
	as := make(map[revision.Revision]struct{}, len(a))
	for _, r := range a {
		as[r] = struct{}{}
	}
	bs := make(map[revision.Revision]struct{}, len(b))
	for _, r := range b {
		if _, ok := as[r]; !ok {
			return false
		}
		bs[r] = struct{}{}
	}
	return len(as) == len(bs)
}
