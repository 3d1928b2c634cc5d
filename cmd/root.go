// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of dbprovision. It
// implements the subcommands that apply SQL setup scripts, inspect how a
// script splits, and manage the stored database connection, using the
// Cobra CLI framework and pterm for terminal output.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dbprovision",
	Short: "Apply SQL setup scripts that are safe to run more than once",
	Long: `dbprovision applies a SQL setup script to a database in a single transaction.
Statements whose object already exists are skipped, other failures are reported
as warnings, and the batch is committed at the end. Re-running a script against
an already provisioned database is safe.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("dbprovision %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application and exits with a status that reflects
// the kind of failure. SIGINT and SIGTERM cancel the command context, which
// rolls back a running batch.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		pterm.Println()
		pterm.Error.Println(logging.PresentError("", err))
		os.Exit(apperrors.ExitCode(err))
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
}
