// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbprovision/cli/internal/config"
)

var configWrite bool

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `The config command prints the configuration apply would use: the config file
merged over the defaults, with PGHOST, PGPORT, PGDATABASE, PGUSER and PGSSLMODE
applied. With --write, a config file holding the defaults is created if none
exists yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Path()
		if err != nil {
			return err
		}
		if configWrite {
			if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
				if err := config.Save(config.Default()); err != nil {
					return err
				}
				pterm.Success.Println("Wrote " + p)
			} else {
				pterm.Info.Println(p + " already exists; left unchanged")
			}
		}

		cfg := loadConfig(cmd, nil)
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("# " + p))
		pterm.Println(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configWrite, "write", false, "Create the config file with defaults if missing")
}
