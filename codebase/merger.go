package codebase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	orderedset "github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/executor"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
)

// MergedCodebasePrefix prefixes the temporary directory holding a merge result.
const MergedCodebasePrefix = "merged_codebase_"

// Merger performs a three-way merge of codebases: the changes between Orig
// and Mod are applied to Dest, and the result is written to a new directory.
//
// Files are reconciled by external oracles: "diff -N a b" decides whether two
// files differ and "merge out orig mod" merges in place. A non-zero oracle
// exit is a per-file outcome; an oracle that cannot be run aborts the merge.
type Merger struct {
	orig, mod, dest *Codebase

	files     FileAccess
	diffTool  *executor.Tool
	mergeTool *executor.Tool
	tempDirs  *fs.TempDirs
	root      string
	logger    *slog.Logger
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithLogger sets the merger's logger.
func WithLogger(logger *slog.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = logger
	}
}

// WithFileAccess replaces the OS file access.
func WithFileAccess(files FileAccess) MergerOption {
	return func(m *Merger) {
		m.files = files
	}
}

// WithDiffTool sets the diff oracle. "-N orig other" is appended to its arguments.
func WithDiffTool(t *executor.Tool) MergerOption {
	return func(m *Merger) {
		m.diffTool = t
	}
}

// WithMergeTool sets the merge oracle. "out orig mod" is appended to its arguments.
func WithMergeTool(t *executor.Tool) MergerOption {
	return func(m *Merger) {
		m.mergeTool = t
	}
}

// WithTempDirs sets where the merge output directory is allocated. It is
// registered with lifetime fs.Persistent.
func WithTempDirs(td *fs.TempDirs) MergerOption {
	return func(m *Merger) {
		m.tempDirs = td
	}
}

// WithOutputRoot writes the merge result to dir instead of a new temporary directory.
func WithOutputRoot(dir string) MergerOption {
	return func(m *Merger) {
		m.root = dir
	}
}

// NewMerger returns a Merger applying orig→mod changes onto dest. Without
// options the "diff" and "merge" programs on PATH are used through exec.
func NewMerger(exec executor.Executor, orig, mod, dest *Codebase, opts ...MergerOption) *Merger {
	m := &Merger{
		orig:      orig,
		mod:       mod,
		dest:      dest,
		files:     LocalFiles{},
		diffTool:  executor.NewTool(exec, "diff"),
		mergeTool: executor.NewTool(exec, "merge"),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tempDirs == nil && m.root == "" {
		m.tempDirs = fs.NewTempDirs(billy.NewBaseOSFS(), os.TempDir())
	}
	return m
}

// MergeResult is the outcome of a codebase merge.
type MergeResult struct {
	// Root is the directory holding the merged codebase. It always exists.
	Root string

	merged *orderedset.Set
	failed *orderedset.Set
}

func newMergeResult(root string) *MergeResult {
	return &MergeResult{
		Root:   root,
		merged: orderedset.New(),
		failed: orderedset.New(),
	}
}

// MergedFiles returns the absolute output paths of files merged without
// conflict, in processing order.
func (r *MergeResult) MergedFiles() []string {
	return toStrings(r.merged.Values())
}

// FailedToMergeFiles returns the absolute output paths of files left with
// conflicts, in processing order.
func (r *MergeResult) FailedToMergeFiles() []string {
	return toStrings(r.failed.Values())
}

// HasConflicts reports whether any file failed to merge.
func (r *MergeResult) HasConflicts() bool {
	return !r.failed.Empty()
}

// Report returns the summary shown to the user after a merge.
func (r *MergeResult) Report() string {
	failed := r.FailedToMergeFiles()
	var b strings.Builder
	fmt.Fprintf(&b, "Merged codebase generated at: %s\n", r.Root)
	fmt.Fprintf(&b, "%d files merged successfully\n", r.merged.Size())
	fmt.Fprintf(&b, "%d files have merge conflicts. Edit the following files to resolve conflicts:\n", len(failed))
	fmt.Fprintf(&b, "[%s]", strings.Join(failed, ", "))
	return b.String()
}

func (r *MergeResult) markMerged(path string) {
	r.failed.Remove(path)
	r.merged.Add(path)
}

func (r *MergeResult) markFailed(path string) {
	r.merged.Remove(path)
	r.failed.Add(path)
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.(string)
	}
	return out
}

// Merge merges every file of dest and mod into a new output directory.
func (m *Merger) Merge(ctx context.Context) (*MergeResult, error) {
	root, err := m.outputRoot()
	if err != nil {
		return nil, err
	}
	result := newMergeResult(root)

	names, err := m.unionOfFiles()
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.mergeFile(ctx, result, name); err != nil {
			code := errors.GetCode(err)
			if code == errors.CodeUnknown {
				code = errors.CodeMergeFailed
			}
			return nil, errors.WrapWithContext(err, code, "failed to merge file",
				map[string]interface{}{"file": name})
		}
	}

	m.logger.Info("merged codebase",
		"root", root,
		"merged", result.merged.Size(),
		"conflicts", result.failed.Size())
	return result, nil
}

func (m *Merger) outputRoot() (string, error) {
	if m.root != "" {
		if err := os.MkdirAll(m.root, 0o755); err != nil {
			return "", errors.WrapWithContext(err, errors.CodeFilesystem, "failed to create merge output",
				map[string]interface{}{"path": m.root})
		}
		return m.root, nil
	}
	root, err := m.tempDirs.Get(MergedCodebasePrefix, fs.Persistent)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeFilesystem, "failed to create merge output")
	}
	return root, nil
}

// unionOfFiles returns the sorted union of dest's and mod's relative filenames.
func (m *Merger) unionOfFiles() ([]string, error) {
	set := make(map[string]struct{})
	for _, c := range []*Codebase{m.dest, m.mod} {
		names, err := c.RelativeFilenames()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// fileState is the location of one file in the three codebases.
// Missing files are os.DevNull.
type fileState struct {
	orig, mod, dest string
	out             string

	inOrig, inMod, inDest bool
}

func (m *Merger) resolve(name, root string) (*fileState, error) {
	st := &fileState{out: filepath.Join(root, filepath.FromSlash(name))}

	var err error
	if st.orig, st.inOrig, err = m.locate(m.orig, name); err != nil {
		return nil, err
	}
	if st.mod, st.inMod, err = m.locate(m.mod, name); err != nil {
		return nil, err
	}
	if st.dest, st.inDest, err = m.locate(m.dest, name); err != nil {
		return nil, err
	}
	return st, nil
}

func (m *Merger) locate(c *Codebase, name string) (string, bool, error) {
	path := c.File(name)
	ok, err := m.files.Exists(path)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return os.DevNull, false, nil
	}
	return path, true, nil
}

func (m *Merger) mergeFile(ctx context.Context, result *MergeResult, name string) error {
	st, err := m.resolve(name, result.Root)
	if err != nil {
		return err
	}

	switch {
	case !st.inOrig && !st.inDest && st.inMod:
		m.logger.Debug("adding file", "file", name)
		if err := m.copyToOutput(st.mod, st.out); err != nil {
			return err
		}
		result.markMerged(st.out)
		return nil

	case st.inOrig && !st.inMod && st.inDest:
		same, err := m.unchanged(ctx, st.orig, st.dest)
		if err != nil {
			return err
		}
		if same {
			m.logger.Debug("file deleted cleanly", "file", name)
			return nil
		}
		m.logger.Debug("file deleted in mod but changed in dest", "file", name)

	case st.inOrig && st.inMod && !st.inDest:
		same, err := m.unchanged(ctx, st.orig, st.mod)
		if err != nil {
			return err
		}
		if same {
			m.logger.Debug("file deleted in dest", "file", name)
			return nil
		}
		m.logger.Debug("file deleted in dest but changed in mod", "file", name)
	}

	return m.threeWayMerge(ctx, result, st)
}

// unchanged reports whether a and b have the same executable bit and the diff
// oracle finds no difference between them.
func (m *Merger) unchanged(ctx context.Context, a, b string) (bool, error) {
	aExec, err := m.files.IsExecutable(a)
	if err != nil {
		return false, err
	}
	bExec, err := m.files.IsExecutable(b)
	if err != nil {
		return false, err
	}
	if aExec != bExec {
		return false, nil
	}

	_, err = m.diffTool.Run(ctx, []string{"-N", a, b})
	switch {
	case err == nil:
		return true, nil
	case executor.IsExitError(err):
		return false, nil
	default:
		return false, err
	}
}

func (m *Merger) threeWayMerge(ctx context.Context, result *MergeResult, st *fileState) error {
	if err := m.copyToOutput(st.dest, st.out); err != nil {
		return err
	}

	_, err := m.mergeTool.Run(ctx, []string{st.out, st.orig, st.mod}, executor.WithWorkingDir(result.Root))
	switch {
	case err == nil:
		m.logger.Debug("merged file", "file", st.out)
		result.markMerged(st.out)
		return nil
	case executor.IsExitError(err):
		m.logger.Debug("merge conflict", "file", st.out)
		result.markFailed(st.out)
		return nil
	default:
		return err
	}
}

func (m *Merger) copyToOutput(src, out string) error {
	if err := m.files.MakeDirsForFile(out); err != nil {
		return errors.WrapWithContext(err, errors.CodeFilesystem, "failed to create output directory",
			map[string]interface{}{"path": out})
	}
	if err := m.files.CopyFile(src, out); err != nil {
		return errors.WrapWithContext(err, errors.CodeFilesystem, "failed to copy file",
			map[string]interface{}{"from": src, "to": out})
	}
	return nil
}
