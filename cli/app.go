// Package cli implements the forgesync command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/forge-sync/config"
	"github.com/input-output-hk/forge-sync/db"
	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/executor"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/fs/billy"
	"github.com/input-output-hk/forge-sync/git"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/schema"
	"github.com/input-output-hk/forge-sync/svn"
)

const (
	// DefaultDBFile is the database location relative to the XDG data home.
	DefaultDBFile = "forgesync/db.json"

	// TokenEnv holds an access token for HTTPS git remotes.
	TokenEnv = "FORGESYNC_GIT_TOKEN"
)

// SourceOpener opens the revision history of a configured repository.
type SourceOpener func(ctx context.Context, name string, repo schema.Repository) (history.Source, error)

// App holds the dependencies shared by every command. Zero fields are
// replaced with production defaults by NewRootCommand.
type App struct {
	// FS holds the project configuration and the equivalence database.
	FS fs.Filesystem

	// Exec runs svn and the diff and merge oracles.
	Exec executor.Executor

	// OpenSource opens repository histories.
	OpenSource SourceOpener

	// Stderr receives log output.
	Stderr io.Writer

	configPath string
	dbPath     string
	verbose    bool
	logger     *slog.Logger
}

// NewRootCommand returns the forgesync command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	if app.FS == nil {
		app.FS = billy.NewBaseOSFS()
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:           "forgesync",
		Short:         "Keep repositories in sync",
		Long:          "forgesync tracks equivalent revisions across repositories and merges codebases between them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.setup()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "project.cue", "project configuration file")
	flags.StringVar(&app.dbPath, "db", "", "equivalence database (default: project db or $XDG_DATA_HOME/"+DefaultDBFile+")")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		highestRevisionCmd(app),
		findEquivalenceCmd(app),
		lastEquivalenceCmd(app),
		revisionsSinceEquivalenceCmd(app),
		noteEquivalenceCmd(app),
		determineMetadataCmd(app),
		planMigrationCmd(app),
		noteMigrationCmd(app),
		mergeCodebasesCmd(app),
		diffCodebasesCmd(app),
	)
	return root
}

// Execute runs the command tree with os.Args and returns the process exit code.
func Execute() int {
	app := &App{}
	root := NewRootCommand(app)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(app.Stderr, "forgesync: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) setup() {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: level}))

	if a.Exec == nil {
		a.Exec = executor.New(executor.WithLogger(a.logger))
	}
	if a.OpenSource == nil {
		a.OpenSource = a.openSource
	}
}

func (a *App) log() *slog.Logger {
	if a.logger == nil {
		a.setup()
	}
	return a.logger
}

func (a *App) project(ctx context.Context) (*config.Project, error) {
	path, err := fs.GetAbs(a.configPath)
	if err != nil {
		return nil, err
	}
	return config.Load(ctx, a.FS, path)
}

// databasePath picks --db, then the project's db, then the XDG default.
func (a *App) databasePath(project *config.Project) (string, error) {
	path := a.dbPath
	if path == "" && project != nil {
		path = project.DB
	}
	if path == "" {
		p, err := xdg.DataFile(DefaultDBFile)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeFilesystem, "cannot locate default database")
		}
		return p, nil
	}
	return fs.GetAbs(path)
}

func (a *App) database(ctx context.Context, project *config.Project) (*db.DB, string, error) {
	path, err := a.databasePath(project)
	if err != nil {
		return nil, "", err
	}
	store, err := db.LoadOrCreate(ctx, a.FS, path, db.WithLogger(a.log()))
	if err != nil {
		return nil, "", err
	}
	return store, path, nil
}

func (a *App) source(ctx context.Context, project *config.Project, name string) (history.Source, schema.Repository, error) {
	repo, err := project.MustRepository(name)
	if err != nil {
		return nil, schema.Repository{}, err
	}
	src, err := a.OpenSource(ctx, name, repo)
	if err != nil {
		return nil, schema.Repository{}, err
	}
	return src, repo, nil
}

func (a *App) sources(ctx context.Context, project *config.Project, names ...string) ([]history.Source, error) {
	out := make([]history.Source, 0, len(names))
	for _, name := range names {
		src, _, err := a.source(ctx, project, name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func (a *App) walker(ctx context.Context, project *config.Project, name string) (*history.Walker, error) {
	src, repo, err := a.source(ctx, project, name)
	if err != nil {
		return nil, err
	}
	return history.NewWalker(src, repo.Branches, history.WithLogger(a.log())), nil
}

func (a *App) openSource(ctx context.Context, name string, repo schema.Repository) (history.Source, error) {
	switch repo.Type {
	case schema.RepositoryTypeGit:
		var auth git.AuthProvider
		if token := os.Getenv(TokenEnv); token != "" {
			auth = git.NewTokenAuth(token)
		}
		r, err := git.Load(ctx, repo.URL, name, auth, a.log())
		if err != nil {
			return nil, err
		}
		return r, nil
	case schema.RepositoryTypeSVN:
		return svn.New(name, repo.URL, a.Exec, svn.WithLogger(a.log())), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "repository %q has unsupported type %q", name, repo.Type)
	}
}
