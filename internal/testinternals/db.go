// Package testinternals wires real dependencies for package tests.
package testinternals

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/duetapp/duet/internal/db"
	"github.com/duetapp/duet/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated SQLite database in the test's temp dir.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "duet.db")
	database, err := db.Init(db.DriverSQLite, path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, db.RunMigrations(context.Background(), database.DB, db.DriverSQLite))
	return database
}

// SeedPairing inserts an active pairing between userA and userB.
func SeedPairing(t *testing.T, database *sqlx.DB, userA, userB string) *model.Pairing {
	t.Helper()

	p := &model.Pairing{
		ID:        uuid.New().String(),
		UserA:     userA,
		UserB:     userB,
		Status:    model.PairingStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	_, err := database.Exec(
		`INSERT INTO pairings (id, user_a, user_b, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserA, p.UserB, p.Status, p.CreatedAt,
	)
	require.NoError(t, err)
	return p
}
