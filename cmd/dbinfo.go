// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbprovision/cli/internal/dbconn"
	"dbprovision/cli/internal/dsn"
	"dbprovision/cli/internal/logging"
)

var (
	dbinfoConn    connFlags
	dbinfoOffline bool
)

// dbinfoCmd shows which connection apply would use, with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the connection apply would use",
	Long: `The dbinfo command resolves the connection string exactly as apply does and
prints it with the user name and password masked, together with where it came
from: the --dsn flag, DBPROVISION_DSN, DATABASE_URL, the OS keychain, or
discrete connection parameters. Unless --offline is given it also connects and
shows the server version and a few existing tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd, &dbinfoConn)
		connString, origin, err := dbinfoConn.newResolver(cfg).resolve()
		if err != nil {
			pterm.Println("⚠️  No usable database connection configured")
			pterm.Println("   Please run: dbprovision connect")
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\n", logging.Mask(connString))
		if info, err := dsn.ParseInfo(connString); err == nil {
			fmt.Fprintf(&b, "Type:     %s\n", info.Type)
			if info.Host != "" {
				fmt.Fprintf(&b, "Host:     %s:%s\n", info.Host, info.Port)
			}
			fmt.Fprintf(&b, "Database: %s\n", info.Database)
		}
		fmt.Fprintf(&b, "Source:   %s", origin)
		if !dbinfoOffline {
			ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
			serverInfo, err := dbconn.Describe(ctx, connString)
			cancel()
			if err != nil {
				fmt.Fprintf(&b, "\nServer:   unreachable (%s)", logging.Truncate(logging.Mask(err.Error()), 60))
			} else {
				fmt.Fprintf(&b, "\n%s", serverInfoText(serverInfo))
			}
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Println(b.String())
		pterm.Println()
		pterm.Println("To update the stored connection, run: dbprovision connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
	dbinfoConn.register(dbinfoCmd)
	dbinfoCmd.Flags().BoolVar(&dbinfoOffline, "offline", false, "do not connect to the database")
}
