// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dbprovision/cli/internal/errors"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("reads utf-8 script", func(t *testing.T) {
		p := writeFile(t, "setup.sql", []byte("CREATE TABLE café (id int);"))
		got, err := Load(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "CREATE TABLE café (id int);", got)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		p := writeFile(t, "bom.sql", append([]byte{0xEF, 0xBB, 0xBF}, []byte("SELECT 1;")...))
		got, err := Load(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1;", got)
	})

	t.Run("file URL", func(t *testing.T) {
		p := writeFile(t, "url.sql", []byte("SELECT 2;"))
		got, err := Load(ctx, "file://"+p)
		require.NoError(t, err)
		assert.Equal(t, "SELECT 2;", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.sql"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.FileMissing), "got %v", err)
		assert.Equal(t, 2, apperrors.ExitCode(err))
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		p := writeFile(t, "latin1.sql", []byte{'S', 'E', 'L', 0xE9, 0xFF})
		_, err := Load(ctx, p)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.FileUnreadable), "got %v", err)
	})
}
