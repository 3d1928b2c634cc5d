// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbprovision/cli/internal/source"
	"dbprovision/cli/internal/splitter"
)

var splitMode string

// splitCmd prints the statements apply would run, without connecting.
var splitCmd = &cobra.Command{
	Use:   "split [file]",
	Short: "Show how a script is split into statements",
	Long: `The split command reads a SQL script and prints the statements that apply would
run, in order, without connecting to any database. Use it to check how a script
splits, especially for scripts with ';' inside string literals or function bodies
where --split-mode aware gives a different result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd, nil)
		if cmd.Flags().Changed("split-mode") {
			cfg.SplitMode = splitMode
		}
		mode, err := splitter.ParseMode(cfg.SplitMode)
		if err != nil {
			return err
		}
		file := cfg.SQLFile
		if len(args) == 1 {
			file = args[0]
		}
		script, err := source.Load(cmd.Context(), file)
		if err != nil {
			return err
		}

		statements := mode.Split(script)
		num := pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)
		for i, stmt := range statements {
			pterm.Println(num.Sprintf("[%d]", i+1))
			pterm.Println(indent(stmt, "    "))
		}
		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(fmt.Sprintf("%d statements (%s mode)", len(statements), mode)))
		return nil
	},
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVar(&splitMode, "split-mode", "", "Statement splitting: naive or aware")
}
