package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "data", "test.db") + "?_pragma=foreign_keys(1)"
	database, err := Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(database) })

	require.NoError(t, RunMigrations(database.DB, "sqlite"))
	return database
}

func TestRunMigrationsCreatesTables(t *testing.T) {
	database := openTestDB(t)

	for _, table := range []string{"users", "goals", "history", "friendships", "shares"} {
		var count int
		err := database.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}

	require.NoError(t, Ping(context.Background(), database))
}

func TestRunMigrationsUnknownDriver(t *testing.T) {
	err := RunMigrations(nil, "mysql")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInTxRollsBackOnError(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := InTx(ctx, database, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, profile_visibility, created_at) VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`,
			"alice123", "hash", "private")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, count)
}

func TestInTxCommits(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := InTx(ctx, database, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, profile_visibility, created_at) VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`,
			"bob456", "hash", "private")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count)
}

func TestActiveFriendshipPairIsUnique(t *testing.T) {
	database := openTestDB(t)

	for _, name := range []string{"alice123", "bob456"} {
		_, err := database.Exec(`INSERT INTO users (username, password_hash, created_at) VALUES ($1, 'x', CURRENT_TIMESTAMP)`, name)
		require.NoError(t, err)
	}

	insert := `INSERT INTO friendships (user_id, friend_id, status, created_at, updated_at)
	           VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := database.Exec(insert, 1, 2, "rejected")
	require.NoError(t, err)
	_, err = database.Exec(insert, 1, 2, "pending")
	require.NoError(t, err)

	// Reverse direction collides with the pending edge.
	_, err = database.Exec(insert, 2, 1, "pending")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare path", "app.db", "app.db?_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"existing params", "app.db?_pragma=foreign_keys(1)", "app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"caller timeout kept", "app.db?_pragma=busy_timeout(100)", "app.db?_pragma=busy_timeout(100)&_txlock=immediate"},
		{"already configured", "app.db?_pragma=busy_timeout(1)&_txlock=deferred", "app.db?_pragma=busy_timeout(1)&_txlock=deferred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.in))
		})
	}
}
