package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/forge-sync/codebase"
	"github.com/input-output-hk/forge-sync/config"
)

func mergeCodebasesCmd(app *App) *cobra.Command {
	var orig, mod, dest, output, projectSpace string

	cmd := &cobra.Command{
		Use:   "merge-codebases",
		Short: "Apply the changes between two codebases onto a third",
		Long: "Apply the changes from --original to --modified onto --destination and write the result " +
			"to a new directory. The diff and merge oracles come from the project configuration when " +
			"--config is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts, err := app.mergeOptions(ctx, cmd)
			if err != nil {
				return err
			}

			cbs := make([]*codebase.Codebase, 0, 3)
			for _, dir := range []string{orig, mod, dest} {
				cb, err := codebase.New(dir, projectSpace, "")
				if err != nil {
					return err
				}
				cbs = append(cbs, cb)
			}
			if output != "" {
				opts = append(opts, codebase.WithOutputRoot(output))
			}

			result, err := codebase.NewMerger(app.Exec, cbs[0], cbs[1], cbs[2], opts...).Merge(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Report())
			return nil
		},
	}

	cmd.Flags().StringVar(&orig, "original", "", "codebase the modifications are based on")
	cmd.Flags().StringVar(&mod, "modified", "", "codebase holding the modifications")
	cmd.Flags().StringVar(&dest, "destination", "", "codebase the modifications are applied to")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for the merged codebase (default: new temporary directory)")
	cmd.Flags().StringVar(&projectSpace, "project-space", "public", "project space of the codebases")
	for _, f := range []string{"original", "modified", "destination"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// mergeOptions returns the oracle options for a merge. The project
// configuration is only read when --config was given explicitly.
func (a *App) mergeOptions(ctx context.Context, cmd *cobra.Command) ([]codebase.MergerOption, error) {
	opts := []codebase.MergerOption{codebase.WithLogger(a.log())}

	project := &config.Project{}
	if cmd.Flags().Changed("config") {
		p, err := a.project(ctx)
		if err != nil {
			return nil, err
		}
		project = p
	}

	diff, err := project.DiffTool(a.Exec)
	if err != nil {
		return nil, err
	}
	merge, err := project.MergeTool(a.Exec)
	if err != nil {
		return nil, err
	}
	return append(opts, codebase.WithDiffTool(diff), codebase.WithMergeTool(merge)), nil
}

func diffCodebasesCmd(*App) *cobra.Command {
	return &cobra.Command{
		Use:   "diff-codebases <codebase1> <codebase2>",
		Short: "Print the differences between two codebases",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := codebase.New(args[0], "", "")
			if err != nil {
				return err
			}
			b, err := codebase.New(args[1], "", "")
			if err != nil {
				return err
			}

			diffs, err := codebase.Diff(a, b)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(diffs) == 0 {
				fmt.Fprintf(out, "No difference between %s and %s\n", a, b)
				return nil
			}
			fmt.Fprint(out, codebase.FormatDiff(diffs))
			return nil
		},
	}
}
