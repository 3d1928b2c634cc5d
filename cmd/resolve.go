// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"strconv"
	"strings"

	"dbprovision/cli/internal/config"
	"dbprovision/cli/internal/dsn"
	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/keychain"
)

// Environment variables consulted for a full connection string, in order.
const (
	envDSN         = "DBPROVISION_DSN"
	envDatabaseURL = "DATABASE_URL"
)

// dsnOrigin names where a connection string came from.
type dsnOrigin string

const (
	originFlag     dsnOrigin = "--dsn flag"
	originEnvDSN   dsnOrigin = envDSN + " environment variable"
	originEnvURL   dsnOrigin = envDatabaseURL + " environment variable"
	originKeychain dsnOrigin = "OS keychain"
	originParams   dsnOrigin = "connection parameters"
)

// dsnResolver collects the inputs of DSN resolution so they can be replaced
// in tests.
type dsnResolver struct {
	flagDSN    string
	cfg        config.Config
	getenv     func(string) string
	loadStored func() (string, error)
	// forceTLS adds the encryption parameter to full connection strings.
	forceTLS bool
}

// resolve picks the first available connection string and normalizes it.
// Order: --dsn, DBPROVISION_DSN, DATABASE_URL, keychain, then discrete
// parameters from flags, PG* variables and the config file.
func (r dsnResolver) resolve() (string, dsnOrigin, error) {
	raw, origin := r.pick()
	if raw == "" {
		built, err := r.fromParams()
		if err != nil {
			return "", "", err
		}
		return built, originParams, nil
	}
	normalized, err := normalizeDSN(raw)
	if err != nil {
		return "", origin, apperrors.Wrap(apperrors.InvalidDSN, "invalid connection string from "+string(origin), err)
	}
	if r.forceTLS {
		if normalized, err = dsn.RequireTLS(normalized); err != nil {
			return "", origin, apperrors.Wrap(apperrors.InvalidDSN, "cannot require TLS on connection string", err)
		}
	}
	return normalized, origin, nil
}

// normalizeDSN validates raw, port included, and returns its normalized form.
func normalizeDSN(raw string) (string, error) {
	if err := dsn.Validate(raw); err != nil {
		return "", err
	}
	return dsn.Parse(raw)
}

func (r dsnResolver) pick() (string, dsnOrigin) {
	if v := strings.TrimSpace(r.flagDSN); v != "" {
		return v, originFlag
	}
	if v := strings.TrimSpace(r.getenv(envDSN)); v != "" {
		return v, originEnvDSN
	}
	if v := strings.TrimSpace(r.getenv(envDatabaseURL)); v != "" {
		return v, originEnvURL
	}
	if r.loadStored != nil {
		// an unavailable keychain is the same as an empty one here
		if v, err := r.loadStored(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), originKeychain
		}
	}
	return "", ""
}

func (r dsnResolver) fromParams() (string, error) {
	db := r.cfg.DB
	if db.Host == "" && !isSQLite(db.Driver) {
		return "", apperrors.New(apperrors.InvalidDSN,
			"no database connection configured; pass --dsn, set "+envDatabaseURL+" or run 'dbprovision connect'")
	}
	port := ""
	if db.Port > 0 {
		port = strconv.Itoa(db.Port)
	}
	password := r.getenv("PGPASSWORD")
	if strings.EqualFold(db.Driver, "mysql") {
		password = r.getenv("MYSQL_PWD")
	}
	built, err := dsn.Build(dsn.Params{
		Driver:     db.Driver,
		Host:       db.Host,
		Port:       port,
		Database:   db.Name,
		User:       db.User,
		Password:   password,
		RequireTLS: db.RequireTLS,
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.InvalidDSN, "invalid connection parameters", err)
	}
	return built, nil
}

func isSQLite(driver string) bool {
	d := strings.ToLower(strings.TrimSpace(driver))
	return d == "sqlite" || d == "sqlite3"
}

// storedDSN loads the DSN saved by `dbprovision connect`.
func storedDSN() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	v, err := km.LoadDBDSN()
	if errors.Is(err, keychain.ErrNotFound) {
		return "", nil
	}
	return v, err
}
