package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/fleetimport/internal/observability"
	"github.com/xkilldash9x/fleetimport/internal/workflow"
)

// newRunCmd creates the `run` command: one workflow pass from the command
// line, printing the full Result as JSON.
func newRunCmd() *cobra.Command {
	var req workflow.Request

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes a single import workflow pass and prints the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Username == "" || req.Password == "" {
				return fmt.Errorf("both --username and --password are required")
			}

			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializeComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			result := components.runner.Run(ctx, req)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !result.Success {
				return fmt.Errorf("workflow stopped: %s", result.Error.Key)
			}
			return nil
		},
	}

	runCmd.Flags().StringVar(&req.URL, "url", "", "login URL (defaults to the configured target)")
	runCmd.Flags().StringVarP(&req.Username, "username", "u", "", "login username")
	runCmd.Flags().StringVarP(&req.Password, "password", "p", "", "login password")
	runCmd.Flags().StringVar(&req.S3Filename, "s3-filename", "", "invoice file to fetch from object storage and attach")
	runCmd.Flags().StringVar(&req.ExpectedGross, "expected-gross", "", "expected gross amount to validate before saving")
	runCmd.Flags().StringVar(&req.InvoiceNo, "invoice-no", "", "invoice number to record")

	return runCmd
}
