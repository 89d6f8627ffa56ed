package codebase

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/executor"
	"github.com/input-output-hk/forge-sync/executor/executortest"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
)

// tree is a codebase description: relative filename to content. A filename
// ending in "*" is written executable.
type tree map[string]string

func writeTree(t *testing.T, files tree) *Codebase {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		mode := os.FileMode(0o644)
		if strings.HasSuffix(name, "*") {
			name = strings.TrimSuffix(name, "*")
			mode = 0o755
		}
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), mode))
	}
	cb, err := New(dir, "public", "")
	require.NoError(t, err)
	return cb
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// oracles emulates "diff -N a b" and "merge out orig mod" on real files.
func oracles() *executortest.Fake {
	return &executortest.Fake{
		Handler: func(_ context.Context, call executortest.Call) (*executor.Result, error) {
			read := func(p string) []byte {
				b, _ := os.ReadFile(p)
				return b
			}
			switch call.Program {
			case "diff":
				a, b := read(call.Args[1]), read(call.Args[2])
				if bytes.Equal(a, b) {
					return executortest.Exit(call, 0, "")
				}
				return executortest.Exit(call, 1, "files differ")
			case "merge":
				out, orig, mod := call.Args[0], call.Args[1], call.Args[2]
				o, base, m := read(out), read(orig), read(mod)
				switch {
				case bytes.Equal(o, m), bytes.Equal(base, m):
					return executortest.Exit(call, 0, "")
				case bytes.Equal(o, base):
					if err := os.WriteFile(out, m, 0o644); err != nil {
						return nil, err
					}
					return executortest.Exit(call, 0, "")
				default:
					return executortest.Exit(call, 1, "")
				}
			}
			return executortest.Exit(call, 127, "")
		},
	}
}

func programs(f *executortest.Fake) []string {
	var out []string
	for _, c := range f.Calls {
		out = append(out, c.Program)
	}
	return out
}

func runMerge(t *testing.T, fake *executortest.Fake, orig, mod, dest tree) *MergeResult {
	t.Helper()
	return runMergeWith(t, fake, orig, mod, dest)
}

func TestMerge_ScenarioA(t *testing.T) {
	res := runMerge(t, oracles(), tree{"foo": "A"}, tree{"foo": "B"}, tree{"foo": "A"})

	out := filepath.Join(res.Root, "foo")
	assert.Equal(t, []string{out}, res.MergedFiles())
	assert.Empty(t, res.FailedToMergeFiles())
	assert.Equal(t, "B", readFile(t, out))
}

func TestMerge_ScenarioB(t *testing.T) {
	res := runMerge(t, oracles(), tree{"foo": "A"}, tree{"foo": "B"}, tree{"foo": "C"})

	out := filepath.Join(res.Root, "foo")
	assert.Empty(t, res.MergedFiles())
	assert.Equal(t, []string{out}, res.FailedToMergeFiles())
	assert.Equal(t, "C", readFile(t, out), "conflicted output keeps dest content")
	assert.True(t, res.HasConflicts())
}

func TestMerge_ModEqualsDest(t *testing.T) {
	res := runMerge(t, oracles(), tree{"foo": "A"}, tree{"foo": "B"}, tree{"foo": "B"})
	assert.Equal(t, []string{filepath.Join(res.Root, "foo")}, res.MergedFiles())
	assert.Equal(t, "B", readFile(t, filepath.Join(res.Root, "foo")))
}

func TestMerge_MergeInvocation(t *testing.T) {
	fake := oracles()
	orig := writeTree(t, tree{"dir/foo": "A"})
	mod := writeTree(t, tree{"dir/foo": "B"})
	dest := writeTree(t, tree{"dir/foo": "A"})
	root := t.TempDir()

	_, err := NewMerger(fake, orig, mod, dest, WithOutputRoot(root)).Merge(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	call := fake.Calls[0]
	assert.Equal(t, "merge", call.Program)
	assert.Equal(t, []string{
		filepath.Join(root, "dir", "foo"),
		orig.File("dir/foo"),
		mod.File("dir/foo"),
	}, call.Args)
	assert.Equal(t, root, call.Options.WorkingDir)
}

func TestMerge_CleanModDelete(t *testing.T) {
	fake := oracles()
	res := runMerge(t, fake, tree{"foo": "X"}, tree{}, tree{"foo": "X"})

	assert.Empty(t, res.MergedFiles())
	assert.Empty(t, res.FailedToMergeFiles())
	assert.Equal(t, []string{"diff"}, programs(fake))

	ok, err := fs.Exists(filepath.Join(res.Root, "foo"))
	require.NoError(t, err)
	assert.False(t, ok, "cleanly deleted file is not written")
}

func TestMerge_ModDeleteConflict(t *testing.T) {
	fake := oracles()
	res := runMerge(t, fake, tree{"foo": "X"}, tree{}, tree{"foo": "Y"})

	out := filepath.Join(res.Root, "foo")
	assert.Equal(t, []string{out}, res.FailedToMergeFiles())
	assert.Equal(t, "Y", readFile(t, out))
	assert.Equal(t, []string{"diff", "merge"}, programs(fake))
	assert.Equal(t, os.DevNull, fake.Calls[1].Args[2])
}

func TestMerge_ModDeleteExecutableChanged(t *testing.T) {
	fake := oracles()
	res := runMerge(t, fake, tree{"foo": "X"}, tree{}, tree{"foo*": "X"})

	assert.Equal(t, []string{"merge"}, programs(fake), "no diff when the executable bit differs")
	assert.Len(t, res.MergedFiles(), 1)
}

func TestMerge_AddFile(t *testing.T) {
	fake := oracles()
	res := runMerge(t, fake, tree{}, tree{"new/file.txt*": "Z"}, tree{})

	out := filepath.Join(res.Root, "new", "file.txt")
	assert.Equal(t, []string{out}, res.MergedFiles())
	assert.Equal(t, "Z", readFile(t, out))
	assert.Empty(t, fake.Calls, "adding a file needs no oracle")

	isExec, err := fs.IsExecutable(out)
	require.NoError(t, err)
	assert.True(t, isExec)
}

func TestMerge_DestDelete(t *testing.T) {
	t.Run("unchanged in mod", func(t *testing.T) {
		fake := oracles()
		res := runMerge(t, fake, tree{"foo": "X"}, tree{"foo": "X"}, tree{})
		assert.Empty(t, res.MergedFiles())
		assert.Empty(t, res.FailedToMergeFiles())
		assert.Equal(t, []string{"diff"}, programs(fake))
	})

	t.Run("changed in mod", func(t *testing.T) {
		fake := oracles()
		res := runMerge(t, fake, tree{"foo": "X"}, tree{"foo": "Y"}, tree{})
		assert.Equal(t, []string{filepath.Join(res.Root, "foo")}, res.FailedToMergeFiles())
		assert.Equal(t, []string{"diff", "merge"}, programs(fake))
	})
}

func TestMerge_DestOnly(t *testing.T) {
	res := runMerge(t, oracles(), tree{}, tree{}, tree{"local": "L"})
	out := filepath.Join(res.Root, "local")
	assert.Equal(t, []string{out}, res.MergedFiles())
	assert.Equal(t, "L", readFile(t, out))
}

func TestMerge_SetsAreDisjoint(t *testing.T) {
	res := runMerge(t, oracles(),
		tree{"a": "1", "b": "1", "c": "1", "d": "1"},
		tree{"a": "2", "b": "2", "c": "1", "e": "new"},
		tree{"a": "1", "b": "3", "c": "1", "d": "1"},
	)

	merged := res.MergedFiles()
	failed := res.FailedToMergeFiles()
	for _, f := range merged {
		assert.NotContains(t, failed, f)
	}
	assert.Equal(t, []string{
		filepath.Join(res.Root, "a"),
		filepath.Join(res.Root, "c"),
		filepath.Join(res.Root, "e"),
	}, merged)
	assert.Equal(t, []string{filepath.Join(res.Root, "b")}, failed)
}

func TestMerge_OutputRootAlwaysExists(t *testing.T) {
	td := fs.NewTempDirs(billy.NewBaseOSFS(), t.TempDir())
	m := NewMerger(oracles(), writeTree(t, tree{}), writeTree(t, tree{}), writeTree(t, tree{}),
		WithTempDirs(td))

	res, err := m.Merge(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(res.Root), MergedCodebasePrefix))

	ok, err := fs.Exists(res.Root)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{res.Root}, td.Dirs(fs.Persistent))
}

func TestMerge_OracleLaunchFailureIsFatal(t *testing.T) {
	fake := &executortest.Fake{
		Handler: func(_ context.Context, call executortest.Call) (*executor.Result, error) {
			return nil, errors.WrapWithContext(
				&executor.CommandError{Program: call.Program, Args: call.Args, ExitCode: -1},
				errors.CodeExecutionFailed, "failed to run command", nil)
		},
	}
	m := NewMerger(fake, writeTree(t, tree{"foo": "A"}), writeTree(t, tree{"foo": "B"}),
		writeTree(t, tree{"foo": "C"}), WithOutputRoot(t.TempDir()))

	_, err := m.Merge(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeExecutionFailed, errors.GetCode(err))
}

func TestMergeResult_Report(t *testing.T) {
	res := newMergeResult("/tmp/merged_codebase_1")
	res.markMerged("/tmp/merged_codebase_1/a")
	res.markFailed("/tmp/merged_codebase_1/b")
	res.markFailed("/tmp/merged_codebase_1/c")

	assert.Equal(t,
		"Merged codebase generated at: /tmp/merged_codebase_1\n"+
			"1 files merged successfully\n"+
			"2 files have merge conflicts. Edit the following files to resolve conflicts:\n"+
			"[/tmp/merged_codebase_1/b, /tmp/merged_codebase_1/c]",
		res.Report())
}

func TestMerge_RealOracles(t *testing.T) {
	for _, p := range []string{"diff", "merge"} {
		if _, err := exec.LookPath(p); err != nil {
			t.Skipf("%s not available: %v", p, err)
		}
	}

	res := runMergeWith(t, executor.New(),
		tree{"foo": "one\ntwo\nthree\n", "gone": "x\n"},
		tree{"foo": "one\ntwo\nthree\nfour\n"},
		tree{"foo": "zero\none\ntwo\nthree\n", "gone": "x\n"},
	)
	assert.Equal(t, []string{filepath.Join(res.Root, "foo")}, res.MergedFiles())
	assert.Equal(t, "zero\none\ntwo\nthree\nfour\n", readFile(t, filepath.Join(res.Root, "foo")))
}

func runMergeWith(t *testing.T, ex executor.Executor, orig, mod, dest tree) *MergeResult {
	t.Helper()
	m := NewMerger(ex, writeTree(t, orig), writeTree(t, mod), writeTree(t, dest),
		WithOutputRoot(t.TempDir()))
	res, err := m.Merge(context.Background())
	require.NoError(t, err)
	return res
}
