package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	tclog "github.com/nao1215/tunnelcheck/internal/log"
)

// NewRootCmd creates the root command for tunnelcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tunnelcheck",
		Short: "Diagnose and repair external access to an Expo development server",
		Long: `tunnelcheck finds out why a local Expo / React Native development server
cannot be reached through a tunnel or from another device, and fixes the
project configuration that causes it.

  tunnelcheck diagnose   inspect app.json, probe local ports, test CORS
  tunnelcheck fix        patch app.json and package.json (with backups)`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewDiagnoseCmd())
	cmd.AddCommand(NewFixCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the process logger. Logs go to stderr so that
// reports written to stdout stay machine readable.
func setupLogger(verbose bool) *slog.Logger {
	logger := tclog.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}
