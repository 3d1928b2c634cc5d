// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbprovision/cli/internal/logging"
	"dbprovision/cli/internal/progress"
	"dbprovision/cli/internal/runlog"
)

// statusCmd shows the outcome of the last apply run.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the result of the last apply run",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := runlog.Load()
		if errors.Is(err, runlog.ErrNoRun) {
			pterm.Println("No apply run recorded yet.")
			return nil
		}
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Script:     %s\n", rec.File)
		fmt.Fprintf(&b, "Connection: %s\n", rec.Connection)
		fmt.Fprintf(&b, "Finished:   %s (%s)\n", rec.FinishedAt.Local().Format(time.DateTime), rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond))
		fmt.Fprintf(&b, "Statements: %d\n", rec.Statements)
		fmt.Fprintf(&b, "Executed:   %d\n", rec.Executed)
		fmt.Fprintf(&b, "Existing:   %d\n", rec.Ignored)
		fmt.Fprintf(&b, "Failed:     %d", len(rec.Failures))
		if rec.Error != "" {
			fmt.Fprintf(&b, "\nRolled back: %s", rec.Error)
		}

		title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Last run: committed")
		if !rec.Success {
			title = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Last run: rolled back")
		}
		pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Println(b.String())

		for _, f := range rec.Failures {
			pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("⚠ ") +
				fmt.Sprintf("statement %d: %s", f.Index+1, logging.Truncate(f.Message, progress.WarningWidth)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
