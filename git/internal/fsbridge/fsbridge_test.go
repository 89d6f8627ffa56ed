package fsbridge

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
)

// otherFS satisfies fs.Filesystem without being a billy.FS.
type otherFS struct{ fs.Filesystem }

func TestToBillyFilesystem(t *testing.T) {
	t.Run("billy.FS", func(t *testing.T) {
		mem := memfs.New()
		got, err := ToBillyFilesystem(billy.NewFS(mem))
		require.NoError(t, err)
		assert.Equal(t, mem, got)
	})

	t.Run("other filesystem", func(t *testing.T) {
		got, err := ToBillyFilesystem(otherFS{})
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "filesystem must be a billy.FS")
	})
}

func TestNewStorage(t *testing.T) {
	for _, size := range []int{0, -1, 16} {
		st := NewStorage(memfs.New(), size)
		require.NotNil(t, st)

		_, err := st.Reference(plumbing.HEAD)
		assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
	}
}
