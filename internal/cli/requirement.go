package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homeeasy/internal/intake"
)

func newRequirementCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requirement",
		Aliases: []string{"req"},
		Short:   "Validate, submit and inspect client requirements",
	}
	cmd.AddCommand(newRequirementValidateCmd(e), newRequirementSubmitCmd(e), newRequirementShowCmd(e))
	return cmd
}

// readSubmission loads a JSON requirement from path, or stdin for "-".
func readSubmission(cmd *cobra.Command, path string) (intake.Raw, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return intake.ParseJSON(b)
}

func newRequirementValidateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json|->",
		Short: "Check a requirement without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			raw, err := readSubmission(cmd, args[0])
			if err != nil {
				return err
			}
			v := intake.Validator{RequireTourDate: cfg.Intake.RequireTourDate}
			req, err := v.Requirement(raw)
			if err != nil {
				return reportInvalid(cmd.OutOrStdout(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return printJSON(cmd.OutOrStdout(), req)
		},
	}
}

func newRequirementSubmitCmd(e *env) *cobra.Command {
	var clientID int64
	cmd := &cobra.Command{
		Use:   "submit <file.json|->",
		Short: "Validate and record a requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readSubmission(cmd, args[0])
			if err != nil {
				return err
			}
			if clientID != 0 {
				raw["client_id"] = json.Number(strconv.FormatInt(clientID, 10))
			}

			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := a.Validator.Requirement(raw)
			if err != nil {
				return reportInvalid(cmd.OutOrStdout(), err)
			}
			id, created, err := a.Requirements.Save(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to save requirement: %w", err)
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Requirement %d for client %d is unchanged\n", id, req.ClientID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requirement %d recorded for client %d\n", id, req.ClientID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "client id (overrides client_id in the file)")
	return cmd
}

func newRequirementShowCmd(e *env) *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "show <client-id>",
		Short: "Print a client's current requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || clientID <= 0 {
				return fmt.Errorf("invalid client ID %q", args[0])
			}

			a, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if history {
				list, err := a.Requirements.ListByClient(cmd.Context(), clientID)
				if err != nil {
					return fmt.Errorf("failed to list requirements: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), list)
			}

			req, err := a.Requirements.Current(cmd.Context(), clientID)
			if err != nil {
				return fmt.Errorf("failed to get requirement: %w", err)
			}
			if req == nil {
				return fmt.Errorf("client %d has no requirement on file", clientID)
			}
			return printJSON(cmd.OutOrStdout(), req)
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "print every recorded version, newest first")
	return cmd
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
