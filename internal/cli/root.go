// Package cli implements the homeeasy command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homeeasy/internal/app"
	"github.com/dukerupert/homeeasy/internal/config"
	"github.com/dukerupert/homeeasy/internal/logging"
)

// env carries what the subcommands share. Config and the app are loaded on
// first use so commands like "staff hash-password" run without either.
type env struct {
	configPath string
	load       func(path string) (*config.Config, error)
	cfg        *config.Config
}

func (e *env) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := e.load(e.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	e.cfg = cfg
	return cfg, nil
}

// open builds the app with a logger writing to the command's stderr. The
// caller closes it.
func (e *env) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, e.logger(cmd, cfg))
}

func (e *env) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(config.LoadPath)
}

func newRootCmd(load func(string) (*config.Config, error)) *cobra.Command {
	e := &env{load: load}

	root := &cobra.Command{
		Use:   "homeeasy",
		Short: "Client roster and requirement intake for a rental brokerage",
		Long: `homeeasy tracks brokerage clients from first contact to a signed lease.

Run "homeeasy serve" for the HTTP API and change feed, or use the
subcommands to work with the roster directly.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "YAML config file (default $"+config.EnvConfig+")")

	root.AddCommand(newServeCmd(e))
	root.AddCommand(newMigrateCmd(e))
	root.AddCommand(newClientsCmd(e))
	root.AddCommand(newRequirementCmd(e))
	root.AddCommand(newBackupCmd(e))
	root.AddCommand(newStaffCmd())
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
