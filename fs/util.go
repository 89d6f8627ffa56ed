package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetAbs returns an absolute representation of path.
// Absolute paths are returned unchanged.
func GetAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fs: abs %q: %w", path, err)
	}
	return abs, nil
}

// Exists reports whether path exists on the OS filesystem.
// A missing path is not an error.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("fs: stat %q: %w", path, err)
	}
}

// IsExecutable reports whether path exists on the OS filesystem and has any
// executable permission bit set.
func IsExecutable(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("fs: stat %q: %w", path, err)
	}
	return info.Mode().Perm()&0o111 != 0, nil
}

// WriteFileAtomic writes data to filename on fsys by writing a temporary file in
// the same directory and renaming it over the target, so readers never observe a
// truncated file. The replaced file carries the temporary file's permissions.
func WriteFileAtomic(fsys Filesystem, filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := fsys.TempFile(dir, "."+filepath.Base(filename)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}

	if err := fsys.Rename(tmpName, filename); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("fs: replace %q: %w", filename, err)
	}
	return nil
}
