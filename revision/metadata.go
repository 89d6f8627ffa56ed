package revision

import (
	"strings"
	"time"

	"github.com/input-output-hk/forge-sync/errors"
)

// DescriptionSeparator is placed between descriptions when metadata is concatenated.
const DescriptionSeparator = "\n-------------\n"

// Metadata holds the descriptive information associated with a Revision.
// Values are treated as immutable once returned by a metadata source.
type Metadata struct {
	// ID is the revision identifier as reported by the VCS.
	ID string

	// Author is the short author identifier (user name).
	Author string

	// Date is the raw date string as reported by the VCS.
	Date string

	// NormalizedDate is the parsed timestamp, nil when unavailable.
	NormalizedDate *time.Time

	// Description is the full change description.
	Description string

	// Parents lists the parent revisions in the order reported by the VCS.
	// More than one parent denotes a merge.
	Parents []Revision

	// FullAuthor includes name and email ("A U Thor <author@example.com>").
	// It is nil for repository types that do not provide it.
	FullAuthor *string
}

// Concatenate folds an ordered list of metadata into a single Metadata, as used when
// a migration squashes several revisions into one.
//
// IDs, authors and dates are joined with ", ", descriptions are joined with
// DescriptionSeparator and parents are unioned in order. FullAuthor and NormalizedDate
// take the last non-nil value seen, since formatted authors and timestamps cannot be
// meaningfully joined.
//
// An empty input is an INVALID_INPUT error.
func Concatenate(rms []Metadata) (Metadata, error) {
	if len(rms) == 0 {
		return Metadata{}, errors.New(errors.CodeInvalidInput, "cannot concatenate an empty list of metadata")
	}

	ids := make([]string, 0, len(rms))
	authors := make([]string, 0, len(rms))
	dates := make([]string, 0, len(rms))
	descs := make([]string, 0, len(rms))
	var parents []Revision
	seen := make(map[Revision]struct{})

	var fullAuthor *string
	var normalizedDate *time.Time

	for _, rm := range rms {
		ids = append(ids, rm.ID)
		authors = append(authors, rm.Author)
		dates = append(dates, rm.Date)
		descs = append(descs, rm.Description)
		for _, p := range rm.Parents {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			parents = append(parents, p)
		}
		if rm.FullAuthor != nil {
			fullAuthor = rm.FullAuthor
		}
		if rm.NormalizedDate != nil {
			normalizedDate = rm.NormalizedDate
		}
	}

	return Metadata{
		ID:             strings.Join(ids, ", "),
		Author:         strings.Join(authors, ", "),
		Date:           strings.Join(dates, ", "),
		NormalizedDate: normalizedDate,
		Description:    strings.Join(descs, DescriptionSeparator),
		Parents:        parents,
		FullAuthor:     fullAuthor,
	}, nil
}

// WithDescription returns a copy of m carrying description d.
func (m Metadata) WithDescription(d string) Metadata {
	m.Description = d
	m.Parents = append([]Revision(nil), m.Parents...)
	return m
}
