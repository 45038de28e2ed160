package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSkipsRollbacks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_favorites.sql", "0001_init.sql", "0001_init_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_favorites.sql"}, files)
}

func TestMigrationNames(t *testing.T) {
	assert.Equal(t, "0001", migrationVersion("0001_init.sql"))
	assert.Equal(t, "0001_init_rollback.sql", rollbackFileFor("0001_init.sql"))
}

func TestShippedMigrationsHaveRollbacks(t *testing.T) {
	dir := filepath.Join("..", "..", "migrations")
	files, err := migrationFiles(dir)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := os.Stat(filepath.Join(dir, rollbackFileFor(f)))
		assert.NoError(t, err, f)
	}
}
