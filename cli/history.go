package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/revision"
)

func highestRevisionCmd(app *App) *cobra.Command {
	var repository, revID string

	cmd := &cobra.Command{
		Use:   "highest-revision",
		Short: "Print the highest revision of a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			project, err := app.project(ctx)
			if err != nil {
				return err
			}
			src, _, err := app.source(ctx, project, repository)
			if err != nil {
				return err
			}

			rev, err := src.HighestRevision(ctx, revID)
			if errors.Is(err, history.ErrNoHead) {
				fmt.Fprintf(cmd.OutOrStdout(), "Repository %q has no revisions\n", repository)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Highest revision in repository %q: %s\n", repository, rev.RevID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repository, "repository", "r", "", "repository name")
	cmd.Flags().StringVar(&revID, "revision", "", "revision or branch to start from (default: head)")
	_ = cmd.MarkFlagRequired("repository")
	return cmd
}

func findEquivalenceCmd(app *App) *cobra.Command {
	var revArg, in string

	cmd := &cobra.Command{
		Use:   "find-equivalence",
		Short: "Print the revisions recorded as equivalent to a revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rev, err := revision.Parse(revArg)
			if err != nil {
				return err
			}
			project, err := app.project(ctx)
			if err != nil {
				return err
			}
			store, _, err := app.database(ctx, project)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			others := store.FindEquivalences(rev, in)
			if len(others) == 0 {
				fmt.Fprintf(out, "No equivalences for %s in repository %q\n", rev, in)
				return nil
			}
			for _, other := range others {
				fmt.Fprintf(out, "%s == %s\n", rev, other)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&revArg, "revision", "", "revision as repository{id}")
	cmd.Flags().StringVar(&in, "in", "", "repository to look for equivalents in")
	_ = cmd.MarkFlagRequired("revision")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func lastEquivalenceCmd(app *App) *cobra.Command {
	var from, to, revID string

	cmd := &cobra.Command{
		Use:   "last-equivalence",
		Short: "Find the newest equivalence reachable from a revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			project, err := app.project(ctx)
			if err != nil {
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

			start, err := w.Source.HighestRevision(ctx, revID)
			if errors.Is(err, history.ErrNoHead) {
				fmt.Fprintf(cmd.OutOrStdout(), "Repository %q has no revisions\n", from)
				return nil
			}
			if err != nil {
				return err
			}
			eq, ok, err := w.FindLastEquivalence(ctx, start, history.NewEquivalenceMatcher(store, to))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "No equivalence with repository %q found from %s\n", to, start)
				return nil
			}
			fmt.Fprintf(out, "Last equivalence: %s\n", eq)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "repository to walk")
	cmd.Flags().StringVar(&to, "to", "", "repository the equivalence points into")
	cmd.Flags().StringVar(&revID, "revision", "", "revision or branch to start from (default: head)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func revisionsSinceEquivalenceCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "revisions-since-equivalence",
		Short: "List the revisions of a repository not yet migrated to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			project, err := app.project(ctx)
			if err != nil {
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

			revs, matched, err := w.FindRevisionsSinceEquivalence(ctx, history.NewEquivalenceMatcher(store, to))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d revisions since equivalence\n", len(revs))
			for _, r := range revs {
				fmt.Fprintln(out, r.String())
			}
			if len(matched) > 0 {
				fmt.Fprintf(out, "Stopped at: %s\n", revision.Join(matched))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "repository to walk")
	cmd.Flags().StringVar(&to, "to", "", "repository revisions are migrated to")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func determineMetadataCmd(app *App) *cobra.Command {
	var revArgs []string

	cmd := &cobra.Command{
		Use:   "determine-metadata",
		Short: "Print the combined metadata of a list of revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			revs, err := parseRevisions(revArgs)
			if err != nil {
				return err
			}
			project, err := app.project(ctx)
			if err != nil {
				return err
			}
			sources, err := app.sources(ctx, project, repositoryNames(revs)...)
			if err != nil {
				return err
			}

			md, err := history.DetermineMetadata(ctx, sources, revs)
			if err != nil {
				return err
			}
			printMetadata(cmd, md)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&revArgs, "revisions", nil, "revisions as repository{id}, comma separated")
	_ = cmd.MarkFlagRequired("revisions")
	return cmd
}

func printMetadata(cmd *cobra.Command, md revision.Metadata) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id: %s\n", md.ID)
	fmt.Fprintf(out, "author: %s\n", md.Author)
	fmt.Fprintf(out, "date: %s\n", md.Date)
	fmt.Fprintf(out, "parents: %s\n", revision.Join(md.Parents))
	fmt.Fprintf(out, "description:\n%s\n", md.Description)
}

func parseRevisions(args []string) ([]revision.Revision, error) {
	revs := make([]revision.Revision, 0, len(args))
	for _, a := range args {
		r, err := revision.Parse(a)
		if err != nil {
			return nil, err
		}
		revs = append(revs, r)
	}
	return revs, nil
}

// repositoryNames returns the distinct repository names of revs in first-seen order.
func repositoryNames(revs []revision.Revision) []string {
	seen := make(map[string]bool, len(revs))
	var names []string
	for _, r := range revs {
		if !seen[r.RepositoryName] {
			seen[r.RepositoryName] = true
			names = append(names, r.RepositoryName)
		}
	}
	return names
}
