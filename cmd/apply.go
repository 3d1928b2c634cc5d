// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbprovision/cli/internal/config"
	"dbprovision/cli/internal/dbconn"
	"dbprovision/cli/internal/dsn"
	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/logging"
	"dbprovision/cli/internal/progress"
	"dbprovision/cli/internal/provision"
	"dbprovision/cli/internal/runlog"
	"dbprovision/cli/internal/source"
	"dbprovision/cli/internal/splitter"
	"dbprovision/cli/internal/terminal"
)

var (
	applyConn      connFlags
	applySplitMode string
	applyStrict    bool
)

// applyCmd runs a setup script against the configured database.
var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "Apply a SQL setup script, skipping objects that already exist",
	Long: `The apply command reads a SQL script, splits it into statements and runs them
in order inside one transaction. Statements failing because their object already
exists are skipped silently; any other failure is printed as a warning and the
run continues. The transaction is committed after the last statement.

If the commit fails or the run is interrupted, the transaction is rolled back
and the command exits with status 4. With --strict, warnings make the command
exit with status 5 after committing.

The file defaults to sql_file from the config (setup.sql).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig(cmd, &applyConn)
	if cmd.Flags().Changed("split-mode") {
		cfg.SplitMode = applySplitMode
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = applyStrict
	}
	logger := newLogger(cfg)

	file := cfg.SQLFile
	if len(args) == 1 {
		file = args[0]
	}
	mode, err := splitter.ParseMode(cfg.SplitMode)
	if err != nil {
		return err
	}

	// the script is read before any connection is attempted
	script, err := source.Load(ctx, file)
	if err != nil {
		return err
	}
	statements := mode.Split(script)
	logger.Debug("script loaded", logger.Args("file", file, "mode", string(mode), "statements", len(statements)))

	connString, origin, err := applyConn.newResolver(cfg).resolve()
	if err != nil {
		return err
	}
	printTarget(file, connString, origin)

	conn, err := openWithSpinner(ctx, connString)
	if err != nil {
		if apperrors.Is(err, apperrors.ConnectionFailed) {
			logging.PresentConnectionError(err)
		}
		return err
	}
	defer func() {
		if cerr := conn.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Debug("close failed", logger.Args("error", logging.Mask(cerr.Error())))
		}
	}()

	started := time.Now()
	render := progress.New(os.Stdout, terminal.IsInteractive(), verbose)
	render.Start(len(statements))
	res := provision.Execute(ctx, conn, statements, provision.WithObserver(func(o provision.Outcome) {
		render.Observe(o)
		logger.Trace("statement finished", logger.Args("index", o.Index+1, "kind", o.Kind.String()))
	}))
	render.Finish(res)

	if err := runlog.Save(runlog.NewRecord(file, connString, len(statements), started, res)); err != nil {
		logger.Debug("could not record run", logger.Args("error", err.Error()))
	}

	if !res.Success {
		return apperrors.Wrap(apperrors.BatchFailed, "setup rolled back", res.Err)
	}
	printNextSteps(cfg)
	if cfg.Strict && !res.Clean() {
		return apperrors.New(apperrors.StatementsReported, fmt.Sprintf("%d statement(s) failed", len(res.Failures)))
	}
	return nil
}

func printTarget(file, connString string, origin dsnOrigin) {
	name := connString
	inMemory := false
	if info, err := dsn.ParseInfo(connString); err == nil {
		name = info.Database
		inMemory = info.InMemory()
	}
	label := pterm.NewStyle(pterm.FgLightCyan)
	pterm.Println()
	pterm.Println(label.Sprint("→ Script:     ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(file))
	pterm.Println(label.Sprint("→ Database:   ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(name))
	pterm.Println(label.Sprint("→ Connection: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(logging.Mask(connString)) +
		pterm.NewStyle(pterm.FgGray).Sprint(" (from "+string(origin)+")"))
	if inMemory {
		pterm.Warning.Println("in-memory SQLite database: changes are discarded when apply exits")
	}
	pterm.Println()
}

func openWithSpinner(ctx context.Context, connString string) (provision.Conn, error) {
	if !terminal.IsInteractive() {
		return dbconn.Open(ctx, connString)
	}
	stop := startInlineSpinner(os.Stdout, "connecting to database", spinnerFrames, 100*time.Millisecond)
	conn, err := dbconn.Open(ctx, connString)
	stop()
	return conn, err
}

func printNextSteps(cfg config.Config) {
	if len(cfg.NextSteps) == 0 {
		return
	}
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Next steps"))
	_ = pterm.DefaultBulletList.WithItems(stringListToBulletItems(cfg.NextSteps)).Render()
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyConn.register(applyCmd)
	applyCmd.Flags().StringVar(&applySplitMode, "split-mode", "", "Statement splitting: naive (split on every ';') or aware (respect quotes and comments)")
	applyCmd.Flags().BoolVar(&applyStrict, "strict", false, "Exit with status 5 when any statement failed")
}
