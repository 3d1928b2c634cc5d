// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbconn

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/provision"
)

// mysqlDuplicateCodes are server error numbers for objects that already exist.
var mysqlDuplicateCodes = map[uint16]bool{
	1007: true, // ER_DB_CREATE_EXISTS
	1050: true, // ER_TABLE_EXISTS_ERROR
	1060: true, // ER_DUP_FIELDNAME
	1061: true, // ER_DUP_KEYNAME
	1062: true, // ER_DUP_ENTRY
	1304: true, // ER_SP_ALREADY_EXISTS
	1359: true, // ER_TRG_ALREADY_EXISTS
	1826: true, // ER_FK_DUP_NAME
}

// sqlConn adapts a database/sql transaction. MySQL and SQLite keep the
// transaction usable after a failed statement, so no savepoints are needed.
type sqlConn struct {
	db       *sql.DB
	tx       *sql.Tx
	classify func(error) error
}

func openSQL(ctx context.Context, driverName, source string, classify func(error) error) (*sqlConn, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidDSN, "cannot open "+driverName+" database", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot connect to "+driverName+" database", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot begin transaction", err)
	}
	return &sqlConn{db: db, tx: tx, classify: classify}, nil
}

func (c *sqlConn) Run(ctx context.Context, stmt string) error {
	_, err := c.tx.ExecContext(ctx, stmt)
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return provision.Fatal(err)
	}
	return c.classify(err)
}

func (c *sqlConn) Commit(context.Context) error {
	return c.tx.Commit()
}

func (c *sqlConn) Rollback(context.Context) error {
	if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (c *sqlConn) Close(context.Context) error {
	return c.db.Close()
}

func mysqlStatementError(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return err
	}
	return &provision.StatementError{
		Code:      strconv.Itoa(int(myErr.Number)),
		Duplicate: mysqlDuplicateCodes[myErr.Number],
		Err:       err,
	}
}

// sqliteStatementError only attaches a code for constraint violations.
// SQLite reports existing tables and indexes with the generic SQLITE_ERROR,
// which leaves the message heuristic to decide.
func sqliteStatementError(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}
	code := liteErr.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}
	return &provision.StatementError{
		Code:      strconv.Itoa(code),
		Duplicate: code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		Err:       err,
	}
}

// describeQueries are the version and table-sample queries for one driver.
// The table query takes the sample size as its only argument.
type describeQueries struct {
	version string
	tables  string
}

var (
	mysqlDescribe = describeQueries{
		version: "SELECT version()",
		tables: `SELECT table_name FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
ORDER BY table_name LIMIT ?`,
	}
	sqliteDescribe = describeQueries{
		version: "SELECT sqlite_version()",
		tables: `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name LIMIT ?`,
	}
)

func describeSQL(ctx context.Context, driverName, source string, q describeQueries) (*ServerInfo, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidDSN, "cannot open "+driverName+" database", err)
	}
	defer db.Close()

	info := &ServerInfo{}
	if err := db.QueryRowContext(ctx, q.version).Scan(&info.Version); err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot connect to "+driverName+" database", err)
	}
	rows, err := db.QueryContext(ctx, q.tables, sampleTables)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot list tables", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot list tables", err)
		}
		info.Tables = append(info.Tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot list tables", err)
	}
	return info, nil
}
