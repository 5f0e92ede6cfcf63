package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetimport/internal/config"
	"github.com/xkilldash9x/fleetimport/internal/observability"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd is the base command; subcommands carry the actual behavior.
var rootCmd = &cobra.Command{
	Use:     "fleetimport",
	Short:   "Automates fleet card-transaction imports against the Catch-e web application.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			// Fall back to a console logger so the failure is visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "fleetimport"})
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Info("Starting fleetimport.", zap.String("version", Version))
		return nil
	},
}

// Execute runs the root command under a signal-aware context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command failed.", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunCmd())
}
