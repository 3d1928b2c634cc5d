// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dbprovision/cli/internal/errors"
	"dbprovision/cli/internal/runlog"
)

func runCLI(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv(envDSN, "")
	t.Setenv(envDatabaseURL, "")
	return t.TempDir()
}

func TestApply_SQLiteEndToEnd(t *testing.T) {
	dir := isolate(t)
	script := filepath.Join(dir, "setup.sql")
	require.NoError(t, os.WriteFile(script, []byte(`
-- Users
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
CREATE INDEX users_name ON users (name);

-- Seed
INSERT INTO users (id, name) VALUES (1, 'admin');
`), 0o600))
	connString := "sqlite://" + filepath.Join(dir, "app.db")

	require.NoError(t, runCLI("apply", script, "--dsn", connString))
	first, err := runlog.Load()
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, 3, first.Statements)
	assert.Equal(t, 3, first.Executed)

	// the same script again only meets existing objects
	require.NoError(t, runCLI("apply", script, "--dsn", connString))
	second, err := runlog.Load()
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.Executed)
	assert.Equal(t, 3, second.Ignored)

	broken := filepath.Join(dir, "broken.sql")
	require.NoError(t, os.WriteFile(broken, []byte("CREATE TABLE extra (id INTEGER); SELEKT 1;"), 0o600))
	require.NoError(t, runCLI("apply", broken, "--dsn", connString), "warnings alone do not fail the run")

	err = runCLI("apply", broken, "--dsn", connString, "--strict")
	require.Error(t, err)
	assert.Equal(t, 5, apperrors.ExitCode(err))
}

func TestApply_MissingFileFailsBeforeConnecting(t *testing.T) {
	dir := isolate(t)
	// an unreachable server would make this slow if a connection were attempted
	err := runCLI("apply", filepath.Join(dir, "nope.sql"), "--dsn", "postgres://u:p@192.0.2.1:5432/db")
	require.Error(t, err)
	assert.Equal(t, 2, apperrors.ExitCode(err))
}

func TestSplitCommand(t *testing.T) {
	dir := isolate(t)
	script := filepath.Join(dir, "s.sql")
	require.NoError(t, os.WriteFile(script, []byte("A; B;; -- comment\nC;"), 0o600))
	assert.NoError(t, runCLI("split", script))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent("a\nb", "  "))
}
