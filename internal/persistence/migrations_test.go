package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationFilesOrdersSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_tickets.sql", "001_queues.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- noop"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_nested.sql"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_queues.sql", "002_tickets.sql"}, files)
}

func TestMigrationFilesMissingDir(t *testing.T) {
	_, err := migrationFiles(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-matter", zap.NewNop()))
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", MigrationsDir))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

func TestDisabledHandles(t *testing.T) {
	var pg *Postgres
	assert.False(t, pg.Enabled())
	assert.Error(t, pg.Ping(context.Background()))

	var rdb *Redis
	assert.False(t, rdb.Enabled())
	assert.Error(t, rdb.Ping(context.Background()))
	rdb.Close()
}
