package config

import (
	"context"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/schema"
)

// loadProject reads path from fsys, unifies it with #Project, decodes it and,
// unless opts.SkipValidation is set, validates the result.
func loadProject(ctx context.Context, fsys fs.Filesystem, path string, opts LoadOptions) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeCUELoadFailed,
			"failed to read project configuration",
			map[string]interface{}{"path": path},
		)
	}

	project, err := decodeProject(src, path)
	if err != nil {
		return nil, err
	}

	if !opts.SkipValidation {
		if err := project.Validate(); err != nil {
			return nil, errors.WrapWithContext(
				err,
				errors.CodeInvalidConfig,
				"invalid project configuration",
				map[string]interface{}{"path": path},
			)
		}
	}
	return project, nil
}

// Parse decodes a project configuration from CUE source without validation
// beyond the schema. filename is used in error positions.
func Parse(src []byte, filename string) (*Project, error) {
	return decodeProject(src, filename)
}

func decodeProject(src []byte, filename string) (*Project, error) {
	cueCtx := cuecontext.New()

	def, err := projectDefinition(cueCtx)
	if err != nil {
		return nil, err
	}

	value := cueCtx.CompileBytes(src, cue.Filename(filename))
	if value.Err() != nil {
		return nil, errors.WrapWithContext(
			value.Err(),
			errors.CodeCUELoadFailed,
			"failed to compile project configuration",
			map[string]interface{}{"path": filename},
		)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeSchemaFailed,
			"project configuration does not match schema",
			map[string]interface{}{"path": filename, "definition": schema.ProjectDefinition},
		)
	}

	var cfg schema.ProjectConfig
	if err := unified.Decode(&cfg); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeCUEDecodeFailed,
			"failed to decode project configuration",
			map[string]interface{}{"path": filename},
		)
	}
	return &Project{ProjectConfig: &cfg}, nil
}

func projectDefinition(cueCtx *cue.Context) (cue.Value, error) {
	schemaValue := cueCtx.CompileBytes(schema.ProjectCUE, cue.Filename("project.cue"))
	if schemaValue.Err() != nil {
		return cue.Value{}, errors.Wrap(schemaValue.Err(), errors.CodeInternal, "embedded schema does not compile")
	}

	def := schemaValue.LookupPath(cue.ParsePath(schema.ProjectDefinition))
	if !def.Exists() {
		return cue.Value{}, errors.Newf(errors.CodeInternal, "embedded schema has no %s definition", schema.ProjectDefinition)
	}
	return def, nil
}
