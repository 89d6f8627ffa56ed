package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/migrate"
	"github.com/input-output-hk/forge-sync/revision"
)

func noteEquivalenceCmd(app *App) *cobra.Command {
	var rev1, rev2 string

	cmd := &cobra.Command{
		Use:   "note-equivalence",
		Short: "Record that two revisions hold equivalent codebases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r1, err := revision.Parse(rev1)
			if err != nil {
				return err
			}
			r2, err := revision.Parse(rev2)
			if err != nil {
				return err
			}
			eq, err := db.NewEquivalence(r1, r2)
			if err != nil {
				return err
			}

			project, err := app.project(ctx)
			if err != nil {
				return err
			}
			for _, name := range []string{r1.RepositoryName, r2.RepositoryName} {
				if _, err := project.MustRepository(name); err != nil {
					return err
				}
			}

			store, path, err := app.database(ctx, project)
			if err != nil {
				return err
			}
			store.NoteEquivalence(eq)
			if err := store.WriteToLocation(ctx, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Noted equivalence: %s\n", eq)
			return nil
		},
	}

	cmd.Flags().StringVar(&rev1, "rev1", "", "first revision as repository{id}")
	cmd.Flags().StringVar(&rev2, "rev2", "", "second revision as repository{id}")
	_ = cmd.MarkFlagRequired("rev1")
	_ = cmd.MarkFlagRequired("rev2")
	return cmd
}

func planMigrationCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "plan-migration",
		Short: "Show the revisions pending migration and their combined metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			project, err := app.project(ctx)
			if err != nil {
				return err
			}
			if _, err := project.MustRepository(to); err != nil {
				return err
			}
			store, _, err := app.database(ctx, project)
			if err != nil {
				return err
			}
			w, err := app.walker(ctx, project, from)
			if err != nil {
				return err
			}

			plan, err := migrate.NewPlanner(w, to, store, migrate.WithLogger(app.log())).Plan(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plan.HasEquivalence {
				fmt.Fprintf(out, "Last equivalence: %s\n", plan.LastEquivalence)
			} else {
				fmt.Fprintf(out, "No equivalence between %q and %q\n", from, to)
			}
			if plan.Empty() {
				fmt.Fprintln(out, "Nothing to migrate")
				return nil
			}
			fmt.Fprintf(out, "Pending: %s\n", revision.Join(plan.Revisions))
			printMetadata(cmd, *plan.Metadata)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "repository to migrate from")
	cmd.Flags().StringVar(&to, "to", "", "repository to migrate to")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func noteMigrationCmd(app *App) *cobra.Command {
	var fromArgs []string
	var toArg string

	cmd := &cobra.Command{
		Use:   "note-migration",
		Short: "Record a submitted migration and the equivalence it establishes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			from, err := parseRevisions(fromArgs)
			if err != nil {
				return err
			}
			to, err := revision.Parse(toArg)
			if err != nil {
				return err
			}
			names := repositoryNames(from)
			if len(names) != 1 {
				return errors.Newf(errors.CodeInvalidInput,
					"migrated revisions must come from one repository, got %v", names)
			}

			project, err := app.project(ctx)
			if err != nil {
				return err
			}
			if _, err := project.MustRepository(to.RepositoryName); err != nil {
				return err
			}
			store, path, err := app.database(ctx, project)
			if err != nil {
				return err
			}
			w, err := app.walker(ctx, project, names[0])
			if err != nil {
				return err
			}

			added, err := migrate.NewPlanner(w, to.RepositoryName, store, migrate.WithLogger(app.log())).Complete(from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !added {
				fmt.Fprintf(out, "Migration to %s already recorded\n", to)
				return nil
			}
			if err := store.WriteToLocation(ctx, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "Recorded migration of %s as %s\n", revision.Join(from), to)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fromArgs, "from-revisions", nil, "migrated revisions as repository{id}, oldest first")
	cmd.Flags().StringVar(&toArg, "to-revision", "", "submitted revision as repository{id}")
	_ = cmd.MarkFlagRequired("from-revisions")
	_ = cmd.MarkFlagRequired("to-revision")
	return cmd
}
