// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"dbprovision/cli/internal/config"
	"dbprovision/cli/internal/logging"
)

// connFlags are the connection flags shared by apply and dbinfo.
type connFlags struct {
	dsn        string
	driver     string
	host       string
	port       int
	database   string
	user       string
	requireTLS bool
	// forceTLS is set when --require-tls is given explicitly.
	forceTLS bool
}

func (f *connFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.dsn, "dsn", "", "Connection string (postgres://, mysql:// or sqlite://)")
	fl.StringVar(&f.driver, "driver", "", "Database driver when no DSN is given: postgres, mysql or sqlite")
	fl.StringVar(&f.host, "host", "", "Database host")
	fl.IntVar(&f.port, "port", 0, "Database port")
	fl.StringVar(&f.database, "database", "", "Database name, or file path for sqlite")
	fl.StringVar(&f.user, "user", "", "Database user; the password is read from PGPASSWORD or MYSQL_PWD")
	fl.BoolVar(&f.requireTLS, "require-tls", true, "Require an encrypted connection; given explicitly it also applies to --dsn and environment DSNs")
}

// overlay applies explicitly set flags on top of cfg.
func (f *connFlags) overlay(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("driver") {
		cfg.DB.Driver = f.driver
	}
	if fl.Changed("host") {
		cfg.DB.Host = f.host
	}
	if fl.Changed("port") {
		cfg.DB.Port = f.port
	}
	if fl.Changed("database") {
		cfg.DB.Name = f.database
	}
	if fl.Changed("user") {
		cfg.DB.User = f.user
	}
	if fl.Changed("require-tls") {
		cfg.DB.RequireTLS = f.requireTLS
		f.forceTLS = f.requireTLS
	}
}

// loadConfig reads the config file and overlays PG* variables and flags.
// An unreadable config file is reported and defaults are used.
func loadConfig(cmd *cobra.Command, f *connFlags) config.Config {
	cfg, err := config.Load()
	if err != nil {
		pterm.Warning.Println(logging.PresentError("ignoring config file", err))
		cfg = config.Default()
	}
	if f != nil && cmd.Flags().Changed("driver") {
		// PG* variables only apply to a PostgreSQL target
		cfg.DB.Driver = f.driver
	}
	cfg.ApplyEnv(os.Getenv)
	if f != nil {
		f.overlay(cmd, &cfg)
	}
	return cfg
}

// newResolver builds the DSN resolver for cfg.
func (f *connFlags) newResolver(cfg config.Config) dsnResolver {
	return dsnResolver{
		flagDSN:    f.dsn,
		cfg:        cfg,
		getenv:     os.Getenv,
		loadStored: storedDSN,
		forceTLS:   f.forceTLS,
	}
}

func newLogger(cfg config.Config) *pterm.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.NewLogger(level, os.Stderr)
}
