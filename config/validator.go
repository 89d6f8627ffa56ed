package config

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/executor"
	"github.com/input-output-hk/forge-sync/schema"
)

// validateProject checks what the schema cannot: the configuration version is
// supported, at least one repository is configured and the oracle commands
// split into a program and arguments.
//
// Every problem is collected and reported in one INVALID_CONFIGURATION error.
func validateProject(p *Project) error {
	if p == nil || p.ProjectConfig == nil {
		return errors.New(errors.CodeInvalidInput, "project configuration is nil")
	}

	var problems []string

	ok, err := schema.IsCompatible(p.Version)
	switch {
	case err != nil:
		problems = append(problems, fmt.Sprintf("version %q: %v", p.Version, err))
	case !ok:
		problems = append(problems, fmt.Sprintf("version %q is not compatible with schema version %s",
			p.Version, schema.SchemaVersion))
	}

	if len(p.Repositories) == 0 {
		problems = append(problems, "no repositories configured")
	}

	for _, name := range p.ListRepositories() {
		for _, b := range p.Repositories[name].Branches {
			if strings.TrimSpace(b) == "" {
				problems = append(problems, fmt.Sprintf("repository %q has a blank branch name", name))
			}
		}
	}

	oracles := []struct{ label, command string }{
		{"diff", p.DiffCommand()},
		{"merge", p.MergeCommand()},
	}
	for _, o := range oracles {
		if _, err := executor.ParseTool(nil, o.command); err != nil {
			problems = append(problems, fmt.Sprintf("%s oracle %q: %v", o.label, o.command, err))
		}
	}

	if len(problems) > 0 {
		return errors.New(
			errors.CodeInvalidConfig,
			fmt.Sprintf("project configuration validation failed: %s", strings.Join(problems, "; ")),
		)
	}
	return nil
}
