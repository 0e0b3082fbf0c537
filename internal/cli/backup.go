package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dukerupert/homeeasy/internal/backup"
	"github.com/dukerupert/homeeasy/internal/config"
	"github.com/dukerupert/homeeasy/internal/database"
	"github.com/dukerupert/homeeasy/internal/logging"
)

func newBackupCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the SQLite database to S3-compatible storage",
		Long: `Snapshots are encrypted with HOMEEASY_BACKUP_PASSPHRASE before upload.
Postgres deployments should use their own dump tooling.`,
	}
	cmd.AddCommand(newBackupCreateCmd(e), newBackupRestoreCmd(e))
	return cmd
}

// archiver checks the settings shared by both backup subcommands.
func archiver(cmd *cobra.Command, cfg *config.Config) (*backup.Archiver, error) {
	if cfg.Database.Driver != database.DriverSQLite {
		return nil, fmt.Errorf("backup supports the sqlite driver only, not %s", cfg.Database.Driver)
	}
	if cfg.Backup.Passphrase == "" {
		return nil, fmt.Errorf("%s is not set", config.EnvBackupPassphrase)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return backup.NewArchiver(cfg.Backup.S3, logger)
}

func newBackupCreateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Upload an encrypted snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			arc, err := archiver(cmd, cfg)
			if err != nil {
				return err
			}

			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			key, size, err := arc.Snapshot(cmd.Context(), a.Conn.DB, cfg.Backup.Passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\n", key, humanize.Bytes(uint64(size)))
			return nil
		},
	}
}

func newBackupRestoreCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key> <path>",
		Short: "Download and decrypt a snapshot into a new database file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			arc, err := archiver(cmd, cfg)
			if err != nil {
				return err
			}
			if err := arc.Restore(cmd.Context(), args[0], cfg.Backup.Passphrase, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", args[0], args[1])
			return nil
		},
	}
}
