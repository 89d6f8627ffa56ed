package billy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parentfs "github.com/input-output-hk/forge-sync/fs"
)

func testMkdirAllStat(t *testing.T, fsys parentfs.Filesystem, root string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Join(root, "a/b/c"), 0o755))

	info, err := fsys.Stat(filepath.Join(root, "a/b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "expected directory, got file %s", info.Name())
}

func testWriteReadRemove(t *testing.T, fsys parentfs.Filesystem, root string) {
	t.Helper()
	p := filepath.Join(root, "file.txt")

	ok, err := fsys.Exists(p)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fsys.WriteFile(p, []byte("hello"), 0o644))

	b, err := fsys.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	ok, err = fsys.Exists(p)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fsys.Remove(p))

	ok, err = fsys.Exists(p)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testReadDir(t *testing.T, fsys parentfs.Filesystem, root string) {
	t.Helper()
	dir := filepath.Join(root, "list")
	require.NoError(t, fsys.MkdirAll(dir, 0o755))
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "b"), []byte("b"), 0o644))
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "a"), []byte("a"), 0o644))

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func testTempDirAndWalk(t *testing.T, fsys parentfs.Filesystem, root string) {
	t.Helper()
	td, err := fsys.TempDir(root, "pref-")
	require.NoError(t, err)
	require.NotEmpty(t, td)

	require.NoError(t, fsys.MkdirAll(filepath.Join(td, "x/y"), 0o755))
	require.NoError(t, fsys.WriteFile(filepath.Join(td, "x/y/z.txt"), []byte("z"), 0o644))

	var seen int
	err = fsys.Walk(td, func(_ string, _ os.FileInfo, err error) error {
		require.NoError(t, err)
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, seen, 2)

	require.NoError(t, fsys.RemoveAll(td))
	ok, err := fsys.Exists(td)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testTempFileAndRename(t *testing.T, fsys parentfs.Filesystem, root string) {
	t.Helper()
	dir := filepath.Join(root, "rename")
	require.NoError(t, fsys.MkdirAll(dir, 0o755))

	f, err := fsys.TempFile(dir, "tmp-")
	require.NoError(t, err)
	_, err = f.Write([]byte("moved"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dst := filepath.Join(dir, "final.txt")
	require.NoError(t, fsys.Rename(f.Name(), dst))

	b, err := fsys.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "moved", string(b))
}

// runSuite runs a battery of consistency tests against a Filesystem impl.
func runSuite(t *testing.T, fsys parentfs.Filesystem, root string) {
	t.Helper()
	testMkdirAllStat(t, fsys, root)
	testWriteReadRemove(t, fsys, root)
	testReadDir(t, fsys, root)
	testTempDirAndWalk(t, fsys, root)
	testTempFileAndRename(t, fsys, root)
}

func TestInMemoryFS_Suite(t *testing.T) {
	runSuite(t, NewInMemoryFS(), "/")
}

func TestOSFS_Suite(t *testing.T) {
	root := t.TempDir()
	runSuite(t, NewOSFS(root), "/")
}

func TestBaseOSFS_Suite(t *testing.T) {
	root := t.TempDir()
	runSuite(t, NewBaseOSFS(), root)
}

func TestFS_StatMissing(t *testing.T) {
	fsys := NewInMemoryFS()
	_, err := fsys.Stat("/nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), `billy: stat "/nope"`)
}

func TestFS_ReadMissing(t *testing.T) {
	fsys := NewInMemoryFS()
	_, err := fsys.ReadFile("/nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBaseOSFS_AbsolutePaths(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "abs.txt")
	require.NoError(t, NewBaseOSFS().WriteFile(p, []byte("x"), 0o644))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
