// Package cli wires the youbuildit commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"youbuildit/pkg/config"
	"youbuildit/pkg/logging"
	"youbuildit/pkg/mdx"
	"youbuildit/pkg/services"
	"youbuildit/pkg/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds what the subcommands share once the root command has run.
type app struct {
	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "youbuildit",
		Short:         "Coding challenges that teach you to build real systems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.Load()
			if v, _ := cmd.Flags().GetString("content"); v != "" {
				a.cfg.ContentPath = v
			}
			if v, _ := cmd.Flags().GetString("database"); v != "" {
				a.cfg.DatabaseURL = v
			}
			logging.New(a.cfg.LogLevel, a.cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().String("content", "", "content directory (overrides CONTENT_PATH)")
	root.PersistentFlags().String("database", "", "database URL (overrides DATABASE_URL)")

	root.AddCommand(
		a.serveCommand(),
		a.migrateCommand(),
		a.billingCommand(),
		a.syncCommand(),
		a.checkCommand(),
	)
	return root
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func (a *app) library() *services.Library {
	return services.NewLibrary(a.cfg.ContentPath, a.cfg.CacheConcurrency, a.cfg.ShowDrafts)
}

func (a *app) renderer() *mdx.Renderer {
	return mdx.New(mdx.WithPlantUMLServer(a.cfg.PlantUMLServer))
}

// openStore opens and migrates the configured database. It returns nil
// without error when DATABASE_URL is unset.
func (a *app) openStore(ctx context.Context) (*store.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	db, err := store.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	applied, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, name := range applied {
		log.Info().Str("migration", name).Msg("migration applied")
	}
	return db, nil
}

// requireStore is openStore for commands that cannot run without a database.
func (a *app) requireStore(ctx context.Context) (*store.DB, error) {
	db, err := a.openStore(ctx)
	if err == nil && db == nil {
		err = errNoDatabase
	}
	return db, err
}
