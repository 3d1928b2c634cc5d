// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbprovision/cli/internal/keychain"
	"dbprovision/cli/internal/runlog"
)

// forgetCmd removes the stored connection string and the last run record.
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the stored connection string",
	Long: `The forget command removes the connection string saved by 'dbprovision connect'
from the OS keychain, along with the record of the last apply run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			return err
		}
		if err := km.ClearDB(); err != nil {
			return err
		}
		_ = runlog.Clear()

		fmt.Println("✅ Stored connection removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}
