package fsbridge

import (
	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// MinCacheSize is the object cache size, in MiB, used for non-positive sizes.
const MinCacheSize = 8

// NewStorage returns go-git object storage on fsys with an LRU object cache
// of cacheMiB megabytes.
func NewStorage(fsys gobilly.Filesystem, cacheMiB int) *filesystem.Storage {
	if cacheMiB <= 0 {
		cacheMiB = MinCacheSize
	}
	objCache := cache.NewObjectLRU(cache.FileSize(cacheMiB) * cache.MiByte)
	return filesystem.NewStorage(fsys, objCache)
}
