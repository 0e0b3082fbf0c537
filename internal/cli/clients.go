package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homeeasy/internal/intake"
	"github.com/dukerupert/homeeasy/internal/roster"
)

func newClientsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Browse and add roster clients",
	}
	cmd.AddCommand(newClientsListCmd(e), newClientsSearchCmd(e), newClientsAddCmd(e))
	return cmd
}

func newClientsListCmd(e *env) *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.Roster.List(cmd.Context(), offset, limit)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			out := cmd.OutOrStdout()
			printRoster(out, roster.Rows(page.Clients, time.Now()))
			if page.HasMore {
				fmt.Fprintf(out, "More: homeeasy clients list --offset %d\n", page.NextOffset)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows to show (default page size)")
	return cmd
}

func newClientsSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <id or name>",
		Short: "Find clients by exact id or name fragment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			clients, err := a.Roster.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to search clients: %w", err)
			}
			printRoster(cmd.OutOrStdout(), roster.Rows(clients, time.Now()))
			return nil
		},
	}
}

func newClientsAddCmd(e *env) *cobra.Command {
	var rep string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a client to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nc, err := intake.ValidateClient(intake.Raw{"name": args[0], "assigned_rep": rep})
			if err != nil {
				return reportInvalid(cmd.OutOrStdout(), err)
			}

			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Clients.Create(cmd.Context(), nc.Name, nc.AssignedRep)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client created: %s (ID: %d)\n", c.FullName, c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&rep, "rep", "", "assigned rep")
	return cmd
}

func printRoster(out io.Writer, rows []roster.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No clients found")
		return
	}

	fmt.Fprintf(out, "%-6s %-30s %-14s %-16s %-16s\n", "ID", "Name", "Stage", "Rep", "Last activity")
	fmt.Fprintln(out, strings.Repeat("-", 86))
	for _, r := range rows {
		fmt.Fprintf(out, "%-6d %-30s %-14s %-16s %-16s\n",
			r.ID,
			truncate(r.Name, 30),
			r.StageLabel,
			truncate(r.AssignedRep, 16),
			r.LastActivityAgo,
		)
	}
	fmt.Fprintf(out, "\nTotal: %d client(s)\n", len(rows))
}

// reportInvalid lists each field problem and returns a summary error.
func reportInvalid(out io.Writer, err error) error {
	var verrs intake.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, v := range verrs {
		fmt.Fprintf(out, "  %s: %s\n", v.Field, v.Reason)
	}
	return fmt.Errorf("%d invalid field(s)", len(verrs))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
