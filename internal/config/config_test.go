// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "setup.sql", c.SQLFile)
	assert.Equal(t, "naive", c.SplitMode)
	assert.True(t, c.DB.RequireTLS)
}

func TestSaveLoad(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	want := Default()
	want.SplitMode = "aware"
	want.Strict = true
	want.DB.Host = "db.internal"
	want.DB.Port = 6543
	want.NextSteps = []string{"Create a storage bucket named 'images'"}
	require.NoError(t, Save(want))

	fi, err := os.Stat(filepath.Join(base, "dbprovision", FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "dbprovision")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"sql_file":"schema.sql"}`), 0o600))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "schema.sql", c.SQLFile)
	assert.Equal(t, "naive", c.SplitMode)
	assert.True(t, c.DB.RequireTLS)
}

func TestLoad_MalformedFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "dbprovision")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{`), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PGHOST":     "pg.example.com",
		"PGPORT":     "6543",
		"PGDATABASE": "app",
		"PGUSER":     "deploy",
		"PGSSLMODE":  "disable",
	}
	c := Default()
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "pg.example.com", c.DB.Host)
	assert.Equal(t, 6543, c.DB.Port)
	assert.Equal(t, "app", c.DB.Name)
	assert.Equal(t, "deploy", c.DB.User)
	assert.False(t, c.DB.RequireTLS)

	c = Default()
	c.ApplyEnv(func(k string) string {
		if k == "PGPORT" {
			return "not-a-port"
		}
		return ""
	})
	assert.Equal(t, 0, c.DB.Port)
}

func TestApplyEnv_OnlyForPostgres(t *testing.T) {
	env := map[string]string{"PGHOST": "pg.example.com", "PGDATABASE": "app", "PGUSER": "deploy"}
	getenv := func(k string) string { return env[k] }

	for _, driver := range []string{"sqlite", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			c := Default()
			c.DB.Driver = driver
			c.DB.Name = "/var/lib/app.db"
			c.ApplyEnv(getenv)

			assert.Equal(t, "/var/lib/app.db", c.DB.Name)
			assert.Empty(t, c.DB.Host)
			assert.Empty(t, c.DB.User)
		})
	}

	c := Default()
	c.DB.Driver = "PostgreSQL"
	c.ApplyEnv(getenv)
	assert.Equal(t, "app", c.DB.Name)
}
