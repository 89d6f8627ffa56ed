package revision

import "strings"

// Scrubber rewrites metadata before it is used to describe a migration.
type Scrubber interface {
	Scrub(Metadata) Metadata
}

// ScrubberFunc adapts a plain function to the Scrubber interface.
type ScrubberFunc func(Metadata) Metadata

// Scrub implements Scrubber.
func (f ScrubberFunc) Scrub(m Metadata) Metadata { return f(m) }

// arcanistReviewersMarker starts the trailer Arcanist appends to descriptions.
const arcanistReviewersMarker = "\n\nReviewers:"

// ArcanistScrubber strips the review trailer added by Arcanist
// (https://github.com/facebook/arcanist) from descriptions.
// The truncated description keeps a trailing newline.
var ArcanistScrubber Scrubber = ScrubberFunc(func(m Metadata) Metadata {
	idx := strings.Index(m.Description, arcanistReviewersMarker)
	if idx < 0 {
		return m
	}
	d := m.Description[:idx]
	if !strings.HasSuffix(d, "\n") {
		d += "\n"
	}
	return m.WithDescription(d)
})

// Scrub applies scrubbers to m in order.
func Scrub(m Metadata, scrubbers ...Scrubber) Metadata {
	for _, s := range scrubbers {
		m = s.Scrub(m)
	}
	return m
}
