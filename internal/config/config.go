// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the password and full connection
// strings go to the OS keychain or the environment.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dbprovision/cli/internal/xdg"
)

// FileName is the config file name inside the XDG config dir.
const FileName = "config.json"

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string   `json:"log_level"`
	SQLFile   string   `json:"sql_file"`
	SplitMode string   `json:"split_mode"`
	Strict    bool     `json:"strict"`
	DB        DBConfig `json:"db"`
	// NextSteps are printed after a successful apply.
	NextSteps []string `json:"next_steps,omitempty"`
}

// DBConfig holds discrete connection settings used when no DSN is given.
type DBConfig struct {
	Driver     string `json:"driver,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	Name       string `json:"name,omitempty"`
	User       string `json:"user,omitempty"`
	RequireTLS bool   `json:"require_tls"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogLevel:  "info",
		SQLFile:   "setup.sql",
		SplitMode: "naive",
		DB: DBConfig{
			Driver:     "postgres",
			RequireTLS: true,
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads configuration; a missing file returns defaults. Fields absent
// from the file keep their default values.
func Load() (Config, error) {
	c := Default()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(b, '\n'), 0o600)
}

// IsPostgres reports whether Driver names PostgreSQL. Empty means PostgreSQL.
func (d DBConfig) IsPostgres() bool {
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case "", "postgres", "postgresql", "pg", "pgx":
		return true
	}
	return false
}

// ApplyEnv overlays the libpq-style PG* variables onto the database
// settings when the driver is PostgreSQL. PGPASSWORD is not read here; it
// never enters Config.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if !c.DB.IsPostgres() {
		return
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("PGHOST"); v != "" {
		c.DB.Host = v
	}
	if v := getenv("PGPORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.DB.Port = port
		}
	}
	if v := getenv("PGDATABASE"); v != "" {
		c.DB.Name = v
	}
	if v := getenv("PGUSER"); v != "" {
		c.DB.User = v
	}
	if v := getenv("PGSSLMODE"); v != "" {
		c.DB.RequireTLS = v != "disable" && v != "allow" && v != "prefer"
	}
}
