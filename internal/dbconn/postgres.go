// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbconn

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"

	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/provision"
)

// pgDuplicateCodes are SQLSTATE codes for objects that already exist.
var pgDuplicateCodes = map[string]bool{
	"42P04": true, // duplicate_database
	"42P03": true, // duplicate_cursor
	"42P05": true, // duplicate_prepared_statement
	"42P06": true, // duplicate_schema
	"42P07": true, // duplicate_table
	"42701": true, // duplicate_column
	"42710": true, // duplicate_object
	"42712": true, // duplicate_alias
	"42723": true, // duplicate_function
	"23505": true, // unique_violation
}

// pgConn runs every statement inside its own savepoint. PostgreSQL aborts the
// whole transaction on the first error, so a failed statement is rolled back
// to its savepoint and the batch carries on.
type pgConn struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

func openPostgres(ctx context.Context, connString string) (*pgConn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot connect to PostgreSQL", err)
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot begin transaction", err)
	}
	return &pgConn{conn: conn, tx: tx}, nil
}

func (c *pgConn) Run(ctx context.Context, sql string) error {
	if c.conn.IsClosed() {
		return provision.Fatal(errors.New("connection is closed"))
	}
	// Begin on a transaction creates a savepoint.
	sp, err := c.tx.Begin(ctx)
	if err != nil {
		return provision.Fatal(pkgerrors.Wrap(err, "failed to create savepoint"))
	}
	if _, err := sp.Exec(ctx, sql); err != nil {
		if c.conn.IsClosed() {
			return provision.Fatal(err)
		}
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return provision.Fatal(pkgerrors.Wrapf(rbErr, "failed to restore savepoint after %v", err))
		}
		return pgStatementError(err)
	}
	if err := sp.Commit(ctx); err != nil {
		return provision.Fatal(pkgerrors.Wrap(err, "failed to release savepoint"))
	}
	return nil
}

func (c *pgConn) Commit(ctx context.Context) error {
	return c.tx.Commit(ctx)
}

func (c *pgConn) Rollback(ctx context.Context) error {
	err := c.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		// a failed commit already ended the transaction
		return nil
	}
	return err
}

func (c *pgConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

func pgStatementError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	return &provision.StatementError{
		Code:      pgErr.Code,
		Duplicate: pgDuplicateCodes[pgErr.Code],
		Err:       err,
	}
}

const (
	pgVersionQuery = "SELECT version()"
	pgTablesQuery  = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name LIMIT $1`
)

func describePostgres(ctx context.Context, connString string) (*ServerInfo, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot connect to PostgreSQL", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	info := &ServerInfo{}
	if err := conn.QueryRow(ctx, pgVersionQuery).Scan(&info.Version); err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "PostgreSQL did not answer", err)
	}
	rows, err := conn.Query(ctx, pgTablesQuery, sampleTables)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot list tables", err)
	}
	info.Tables, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "cannot list tables", err)
	}
	return info, nil
}
