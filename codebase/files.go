package codebase

import (
	"os"
	"path/filepath"

	shutil "github.com/termie/go-shutil"

	"github.com/input-output-hk/forge-sync/fs"
)

// FileAccess is the set of file operations the merger performs on codebase
// and output files.
type FileAccess interface {
	Exists(path string) (bool, error)
	IsExecutable(path string) (bool, error)
	MakeDirsForFile(path string) error
	CopyFile(src, dst string) error
}

// LocalFiles implements FileAccess on the OS filesystem.
type LocalFiles struct{}

// Exists implements FileAccess.
func (LocalFiles) Exists(path string) (bool, error) {
	return fs.Exists(path)
}

// IsExecutable implements FileAccess.
func (LocalFiles) IsExecutable(path string) (bool, error) {
	return fs.IsExecutable(path)
}

// MakeDirsForFile implements FileAccess.
func (LocalFiles) MakeDirsForFile(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// CopyFile implements FileAccess. Content and permission bits are copied.
// Copying os.DevNull creates an empty file.
func (LocalFiles) CopyFile(src, dst string) error {
	if src == os.DevNull {
		return os.WriteFile(dst, nil, 0o644)
	}
	_, err := shutil.Copy(src, dst, false)
	return err
}
