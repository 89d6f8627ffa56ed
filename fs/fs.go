// Package fs defines the filesystem abstraction used by forge-sync.
//
// Persistent state (the equivalence database, git object storage) is accessed
// through Filesystem so it can live on the OS filesystem in production and in
// memory under test. Implementations live in sub-packages such as fs/billy.
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the set of operations forge-sync needs from a filesystem.
// Paths use the implementation's separator and are interpreted relative to its root.
type Filesystem interface {
	// State files.
	Exists(path string) (bool, error)
	Stat(name string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error

	// Directories.
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(dirname string) ([]os.FileInfo, error)
	RemoveAll(path string) error
	Walk(root string, walkFn filepath.WalkFunc) error

	// Scratch space.
	TempDir(dir, prefix string) (string, error)
	TempFile(dir, prefix string) (File, error)
}
