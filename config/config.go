// Package config loads, validates and gives convenient access to forge-sync
// project configurations written in CUE.
//
// A project configuration names the repositories kept in sync, where the
// equivalence database lives and which diff and merge oracles reconcile
// codebases. Files are unified with the embedded schema.#Project definition
// before decoding, so type and shape errors are reported by CUE.
//
// # Basic Usage
//
//	fsys := billy.NewOSFS("/etc/forgesync")
//	project, err := config.Load(ctx, fsys, "project.cue")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, name := range project.ListRepositories() {
//	    repo, _ := project.GetRepository(name)
//	    fmt.Printf("%s: %s %s\n", name, repo.Type, repo.URL)
//	}
//
// Skip validation during loading:
//
//	project, err := config.LoadWithOptions(ctx, fsys, "project.cue", config.LoadOptions{SkipValidation: true})
package config

import (
	"context"
	"sort"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/executor"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/schema"
)

const (
	// DefaultDiffCommand is the diff oracle used when none is configured.
	DefaultDiffCommand = "diff"

	// DefaultMergeCommand is the merge oracle used when none is configured.
	DefaultMergeCommand = "merge"
)

// LoadOptions configures the behavior of configuration loading.
type LoadOptions struct {
	// SkipValidation disables the checks run after decoding. Schema
	// unification still applies.
	SkipValidation bool
}

// Project wraps schema.ProjectConfig with helper methods. It is read-only
// after loading.
type Project struct {
	*schema.ProjectConfig
}

// Load loads and validates the project configuration at path.
func Load(ctx context.Context, fsys fs.Filesystem, path string) (*Project, error) {
	return LoadWithOptions(ctx, fsys, path, LoadOptions{})
}

// LoadWithOptions loads the project configuration at path with custom options.
func LoadWithOptions(ctx context.Context, fsys fs.Filesystem, path string, opts LoadOptions) (*Project, error) {
	return loadProject(ctx, fsys, path, opts)
}

// ListRepositories returns the configured repository names, sorted.
func (p *Project) ListRepositories() []string {
	if p.ProjectConfig == nil {
		return []string{}
	}
	names := make([]string, 0, len(p.Repositories))
	for name := range p.Repositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetRepository returns the repository configured under name.
func (p *Project) GetRepository(name string) (schema.Repository, bool) {
	if p.ProjectConfig == nil {
		return schema.Repository{}, false
	}
	repo, ok := p.Repositories[name]
	return repo, ok
}

// MustRepository returns the repository configured under name or a
// NOT_FOUND error naming the available repositories.
func (p *Project) MustRepository(name string) (schema.Repository, error) {
	repo, ok := p.GetRepository(name)
	if !ok {
		return schema.Repository{}, errors.WrapWithContext(
			errors.Newf(errors.CodeNotFound, "unknown repository %q", name),
			errors.CodeNotFound,
			"repository not configured",
			map[string]interface{}{"available": p.ListRepositories()},
		)
	}
	return repo, nil
}

// DiffCommand returns the configured diff oracle command line.
func (p *Project) DiffCommand() string {
	if p.ProjectConfig != nil && p.Merge != nil && p.Merge.Diff != "" {
		return p.Merge.Diff
	}
	return DefaultDiffCommand
}

// MergeCommand returns the configured merge oracle command line.
func (p *Project) MergeCommand() string {
	if p.ProjectConfig != nil && p.Merge != nil && p.Merge.Merge != "" {
		return p.Merge.Merge
	}
	return DefaultMergeCommand
}

// DiffTool returns the diff oracle bound to exec.
func (p *Project) DiffTool(exec executor.Executor) (*executor.Tool, error) {
	return executor.ParseTool(exec, p.DiffCommand())
}

// MergeTool returns the merge oracle bound to exec.
func (p *Project) MergeTool(exec executor.Executor) (*executor.Tool, error) {
	return executor.ParseTool(exec, p.MergeCommand())
}

// Validate runs the checks CUE cannot express.
func (p *Project) Validate() error {
	return validateProject(p)
}
