// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dbconn opens the single connection and transaction a provisioning
// batch runs on. PostgreSQL goes through pgx directly; MySQL and SQLite go
// through database/sql with the go-sql-driver and modernc drivers.
package dbconn

import (
	"context"

	"dbprovision/cli/internal/dsn"
	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/provision"
)

// Open connects to the database named by connString and begins the batch
// transaction. The returned Conn owns the connection; callers must Close it.
func Open(ctx context.Context, connString string) (provision.Conn, error) {
	info, driver, source, err := resolve(connString)
	if err != nil {
		return nil, err
	}
	var conn provision.Conn
	switch info.Type {
	case dsn.DBTypePostgreSQL:
		conn, err = openPostgres(ctx, source)
	case dsn.DBTypeMySQL:
		conn, err = openSQL(ctx, driver, source, mysqlStatementError)
	default:
		conn, err = openSQL(ctx, driver, source, sqliteStatementError)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// sampleTables caps how many existing tables Describe lists.
const sampleTables = 5

// ServerInfo identifies the database a connection string reaches.
type ServerInfo struct {
	Version string
	// Tables holds up to five existing table names in alphabetical order.
	Tables []string
}

// Describe connects to connString and reports the server version and a
// sample of existing tables, so the operator can confirm the target.
func Describe(ctx context.Context, connString string) (*ServerInfo, error) {
	info, driver, source, err := resolve(connString)
	if err != nil {
		return nil, err
	}
	switch info.Type {
	case dsn.DBTypePostgreSQL:
		return describePostgres(ctx, source)
	case dsn.DBTypeMySQL:
		return describeSQL(ctx, driver, source, mysqlDescribe)
	default:
		return describeSQL(ctx, driver, source, sqliteDescribe)
	}
}

func resolve(connString string) (*dsn.DSNInfo, string, string, error) {
	info, err := dsn.ParseInfo(connString)
	if err != nil {
		return nil, "", "", apperrors.Wrap(apperrors.InvalidDSN, "cannot parse connection string", err)
	}
	driver, source, err := dsn.DriverSource(info)
	if err != nil {
		return nil, "", "", apperrors.Wrap(apperrors.InvalidDSN, "unsupported connection string", err)
	}
	return info, driver, source, nil
}
