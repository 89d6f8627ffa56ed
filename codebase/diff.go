package codebase

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	difflib "github.com/ianbruene/go-difflib/difflib"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/fs"
)

// FileDiff describes how one file differs between two codebases.
type FileDiff struct {
	// Name is the slash-separated relative filename.
	Name string

	// Added is set when the file exists only in the second codebase,
	// Removed when it exists only in the first.
	Added   bool
	Removed bool

	// ModeChanged is set when the executable bit differs.
	ModeChanged bool

	// Unified is the unified diff of the contents, empty when they are equal.
	Unified string
}

// Diff compares the files of a and b. Files with equal content and mode are
// omitted; the result is sorted by filename.
func Diff(a, b *Codebase) ([]FileDiff, error) {
	aNames, err := a.RelativeFilenames()
	if err != nil {
		return nil, err
	}
	bNames, err := b.RelativeFilenames()
	if err != nil {
		return nil, err
	}

	inA := make(map[string]bool, len(aNames))
	for _, n := range aNames {
		inA[n] = true
	}
	inB := make(map[string]bool, len(bNames))
	for _, n := range bNames {
		inB[n] = true
	}

	var out []FileDiff
	for _, name := range mergeSorted(aNames, bNames) {
		switch {
		case inA[name] && !inB[name]:
			out = append(out, FileDiff{Name: name, Removed: true})
		case !inA[name] && inB[name]:
			out = append(out, FileDiff{Name: name, Added: true})
		default:
			fd, err := diffFile(a, b, name)
			if err != nil {
				return nil, err
			}
			if fd != nil {
				out = append(out, *fd)
			}
		}
	}
	return out, nil
}

func diffFile(a, b *Codebase, name string) (*FileDiff, error) {
	aPath, bPath := a.File(name), b.File(name)

	aExec, err := fs.IsExecutable(aPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFilesystem, "failed to stat file")
	}
	bExec, err := fs.IsExecutable(bPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFilesystem, "failed to stat file")
	}
	aText, err := os.ReadFile(aPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFilesystem, "failed to read file")
	}
	bText, err := os.ReadFile(bPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFilesystem, "failed to read file")
	}

	fd := FileDiff{
		Name:        name,
		ModeChanged: aExec != bExec,
	}
	if !bytes.Equal(aText, bText) {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(aText)),
			B:        difflib.SplitLines(string(bText)),
			FromFile: name + " (" + a.String() + ")",
			ToFile:   name + " (" + b.String() + ")",
			Context:  3,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to compute diff")
		}
		fd.Unified = text
	}

	if fd.Unified == "" && !fd.ModeChanged {
		return nil, nil
	}
	return &fd, nil
}

// mergeSorted returns the sorted union of two sorted lists.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// FormatDiff renders diffs the way "diff-codebases" prints them.
func FormatDiff(diffs []FileDiff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch {
		case d.Added:
			fmt.Fprintf(&b, "%s: added\n", d.Name)
		case d.Removed:
			fmt.Fprintf(&b, "%s: removed\n", d.Name)
		default:
			if d.ModeChanged {
				fmt.Fprintf(&b, "%s: executable bit changed\n", d.Name)
			}
			b.WriteString(d.Unified)
		}
	}
	return b.String()
}
