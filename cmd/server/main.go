package main

import (
	"context"
	"fmt"
	"os"

	"go-wiki-api/internal/config"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"

	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg *config.Config
	log logger.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          app
	)
	root := &cobra.Command{
		Use:           "wiki-api",
		Short:         "Wiki API server (default: serve)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Log, nil)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), &a)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: search for config.yml)")

	root.AddCommand(
		newServeCmd(&a),
		newMigrateCmd(&a),
		newUserCmd(&a),
		newRoleCmd(&a),
		newTokenCmd(&a),
	)
	return root
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a)
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Info("Applying database migrations...")
			if err := data.ApplyMigrations(a.cfg.DB); err != nil {
				return err
			}
			a.log.Info("Migrations applied successfully.")
			return nil
		},
	}
}

// openStore connects to the configured database.
func openStore(ctx context.Context, cfg config.DBConfig) (*data.Store, error) {
	db, dialect, err := data.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return data.NewStore(db, dialect), nil
}
