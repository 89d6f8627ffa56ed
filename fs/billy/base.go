package billy

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// nativeOS resolves every path exactly as the operating system does, so
// absolute paths from the command line (a --db flag, a codebase directory)
// are used as given rather than joined under a chroot.
type nativeOS struct {
	osfs.ChrootOS
}

//nolint:ireturn // billy.Chroot signature.
func (*nativeOS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (*nativeOS) Root() string {
	return "/"
}

// NewBaseOSFS returns an FS over the native OS filesystem.
func NewBaseOSFS() *FS {
	return &FS{fs: &nativeOS{}}
}
