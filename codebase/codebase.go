// Package codebase models materialized file-tree snapshots of a revision and
// reconciles three of them (original, modified, destination) with external
// diff and merge oracles.
package codebase

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
)

// Codebase is a snapshot of a project's files materialized in a directory.
type Codebase struct {
	// Path is the absolute directory holding the files.
	Path string

	// ProjectSpace is the project space the files belong to, such as "public".
	ProjectSpace string

	// Expression describes how the codebase was produced. It is informational.
	Expression string

	fs fs.Filesystem
}

// New returns the codebase rooted at path on the OS filesystem.
func New(path, projectSpace, expression string) (*Codebase, error) {
	abs, err := fs.GetAbs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFilesystem, "failed to resolve codebase path")
	}
	return &Codebase{
		Path:         abs,
		ProjectSpace: projectSpace,
		Expression:   expression,
		fs:           billy.NewBaseOSFS(),
	}, nil
}

// String returns the expression when set, the path otherwise.
func (c *Codebase) String() string {
	if c.Expression != "" {
		return c.Expression
	}
	return c.Path
}

// File returns the absolute path of rel, a slash-separated relative filename.
func (c *Codebase) File(rel string) string {
	return filepath.Join(c.Path, filepath.FromSlash(rel))
}

// RelativeFilenames returns the slash-separated paths of every regular file in
// the codebase, sorted.
func (c *Codebase) RelativeFilenames() ([]string, error) {
	fsys := c.fs
	if fsys == nil {
		fsys = billy.NewBaseOSFS()
	}

	var names []string
	err := fsys.Walk(c.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(c.Path, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeFilesystem, "failed to list codebase files",
			map[string]interface{}{"path": c.Path})
	}

	sort.Strings(names)
	return names, nil
}
