package schema

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the current schema version.
// Project configurations and equivalence databases declare a version to
// indicate compatibility.
const SchemaVersion = "0.1.0"

// IsCompatible checks if version is compatible with SchemaVersion using a
// caret constraint.
//
// For 0.x.y versions the caret allows only patch changes: 0.1.5 is compatible
// with 0.1.0, 0.2.0 and 1.0.0 are not. Pre-release versions never match.
//
// Returns an error if version is not a valid semantic version.
func IsCompatible(version string) (bool, error) {
	constraint, err := semver.NewConstraint("^" + SchemaVersion)
	if err != nil {
		return false, fmt.Errorf("invalid schema version: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}

	return constraint.Check(v), nil
}
