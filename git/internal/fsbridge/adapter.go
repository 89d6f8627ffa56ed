// Package fsbridge connects fs.Filesystem to the go-billy filesystems and
// storage go-git expects.
package fsbridge

import (
	"fmt"

	gobilly "github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
)

// ToBillyFilesystem returns the go-billy filesystem behind fsys, which must
// come from the fs/billy package.
//
//nolint:ireturn // go-git consumes the billy.Filesystem interface.
func ToBillyFilesystem(fsys fs.Filesystem) (gobilly.Filesystem, error) {
	b, ok := fsys.(*billy.FS)
	if !ok {
		return nil, fmt.Errorf("filesystem must be a billy.FS from fs/billy package, got %T", fsys)
	}
	return b.Raw(), nil
}
