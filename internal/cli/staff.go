package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homeeasy/internal/auth"
)

func newStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff logins",
	}
	cmd.AddCommand(newStaffHashCmd())
	return cmd
}

func newStaffHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <name>",
		Short: "Hash a password read from stdin for the staff setting",
		Long: `Reads one line from stdin and prints a name:hash entry suitable for
HOMEEASY_STAFF or the staff section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" || strings.ContainsAny(name, ":,") {
				return fmt.Errorf("invalid staff name %q", args[0])
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password on stdin")
			}
			hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", name, hash)
			return nil
		},
	}
}
