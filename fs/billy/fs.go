// Package billy implements fs.Filesystem on top of go-billy, giving forge-sync
// OS-backed, root-anchored and in-memory filesystems behind one interface.
package billy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/input-output-hk/forge-sync/fs"
)

var _ parentfs.Filesystem = (*FS)(nil)

// FS implements fs.Filesystem using go-billy.
type FS struct {
	fs billy.Filesystem
}

// wrap annotates err with the failed operation and path. A nil err stays nil.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("billy: %s %q: %w", op, path, err)
}

// Exists reports whether path exists. A missing path is not an error.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, wrap("stat", path, err)
}

func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	return info, wrap("stat", name, err)
}

func (b *FS) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(b.fs, path)
	return data, wrap("read", path, err)
}

func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return wrap("write", filename, util.WriteFile(b.fs, filename, data, perm))
}

func (b *FS) Rename(oldpath, newpath string) error {
	return wrap("rename", oldpath+" -> "+newpath, b.fs.Rename(oldpath, newpath))
}

func (b *FS) Remove(name string) error {
	return wrap("remove", name, b.fs.Remove(name))
}

func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	return wrap("mkdir", path, b.fs.MkdirAll(path, perm))
}

func (b *FS) ReadDir(dirname string) ([]os.FileInfo, error) {
	entries, err := b.fs.ReadDir(dirname)
	return entries, wrap("readdir", dirname, err)
}

func (b *FS) RemoveAll(path string) error {
	return wrap("removeall", path, util.RemoveAll(b.fs, path))
}

// Walk walks the tree at root in lexical order, like filepath.Walk.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	return wrap("walk", root, util.Walk(b.fs, root, walkFn))
}

func (b *FS) TempDir(dir, prefix string) (string, error) {
	name, err := util.TempDir(b.fs, dir, prefix)
	return name, wrap("tempdir", filepath.Join(dir, prefix), err)
}

//nolint:ireturn // fs.Filesystem returns the File interface.
func (b *FS) TempFile(dir, prefix string) (parentfs.File, error) {
	f, err := util.TempFile(b.fs, dir, prefix)
	if err != nil {
		return nil, wrap("tempfile", filepath.Join(dir, prefix), err)
	}
	return &file{f: f}, nil
}

// Raw returns the underlying go-billy filesystem, for libraries such as
// go-git that take one directly.
//
//nolint:ireturn // go-git consumes the billy interface.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}

// NewFS wraps an existing go-billy filesystem.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewInMemoryFS returns an empty in-memory filesystem.
func NewInMemoryFS() *FS {
	return &FS{fs: memfs.New()}
}

// NewOSFS returns an OS filesystem with every path resolved under path.
func NewOSFS(path string) *FS {
	return &FS{fs: osfs.New(path)}
}
