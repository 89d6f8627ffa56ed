package fs

import "io"

// File is a file opened for writing, as returned by Filesystem.TempFile.
type File interface {
	io.WriteCloser

	// Name returns the path the file was created at.
	Name() string
}
