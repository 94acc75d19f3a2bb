package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "duet.db")

	database, err := Init(DriverSQLite, path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer Close(database)

	require.NoError(t, RunMigrations(ctx, database.DB, DriverSQLite))

	version, err := Version(ctx, database.DB, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM challenge_progress`))
	assert.Zero(t, count)

	// running again is a no-op
	require.NoError(t, RunMigrations(ctx, database.DB, DriverSQLite))

	require.NoError(t, MigrateDown(ctx, database.DB, DriverSQLite))
	err = database.Get(&count, `SELECT COUNT(*) FROM challenge_progress WHERE counted_days = ''`)
	assert.Error(t, err)
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM goals`))

	require.NoError(t, MigrateDown(ctx, database.DB, DriverSQLite))
	err = database.Get(&count, `SELECT COUNT(*) FROM goals`)
	assert.Error(t, err)
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	database, err := Init(DriverSQLite, filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	defer Close(database)

	err = RunMigrations(context.Background(), database.DB, "oracle")
	assert.ErrorContains(t, err, "unsupported database driver")
}
