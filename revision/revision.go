// Package revision defines the immutable value types that describe a point in a
// repository's history and its descriptive metadata.
package revision

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/forge-sync/errors"
)

// Revision identifies one point in one repository's history.
// It is a comparable value type: two revisions are equal when both the
// identifier and the repository name are equal, so it can be used as a map key.
type Revision struct {
	// RevID is the VCS-specific identifier (a hash, an integer, ...). It is opaque.
	RevID string `json:"revId"`

	// RepositoryName is the configured name of the repository the revision belongs to.
	RepositoryName string `json:"repositoryName"`
}

// New returns the revision revID of repositoryName.
func New(revID, repositoryName string) Revision {
	return Revision{RevID: revID, RepositoryName: repositoryName}
}

// String renders the revision as repository{revId}.
func (r Revision) String() string {
	return fmt.Sprintf("%s{%s}", r.RepositoryName, r.RevID)
}

// Parse parses the repository{revId} form produced by String.
func Parse(s string) (Revision, error) {
	open := strings.IndexByte(s, '{')
	if open <= 0 || !strings.HasSuffix(s, "}") || open == len(s)-2 {
		return Revision{}, errors.Newf(errors.CodeInvalidInput, "revision %q is not of the form repository{id}", s)
	}
	return New(s[open+1:len(s)-1], s[:open]), nil
}

// IsZero reports whether r is the zero Revision.
func (r Revision) IsZero() bool {
	return r.RevID == "" && r.RepositoryName == ""
}

// Join renders revisions as a comma separated list of their String forms.
func Join(revs []Revision) string {
	parts := make([]string, len(revs))
	for i, r := range revs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
