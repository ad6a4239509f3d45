package membership_test

import (
	"database/sql"
	"testing"

	membership "github.com/goliatone/go-membership"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateMembers = `CREATE TABLE members (
    id TEXT NOT NULL PRIMARY KEY,
    member_role TEXT NOT NULL DEFAULT 'member',
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    phone_number TEXT,
    password_hash TEXT,
    status TEXT,
    dues_paid_until TIMESTAMP NULL,
    bypass_dues BOOLEAN DEFAULT FALSE,
    expires_at TIMESTAMP NULL,
    suspended_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

	sqliteCreateSessions = `CREATE TABLE sessions (
    id TEXT NOT NULL PRIMARY KEY,
    member_id TEXT NOT NULL,
    token_hash TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used_at TIMESTAMP NULL
);`

	sqliteCreateCSRFTokens = `CREATE TABLE csrf_tokens (
    session_id TEXT NOT NULL PRIMARY KEY,
    token_hash TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	for _, ddl := range []string{sqliteCreateMembers, sqliteCreateSessions, sqliteCreateCSRFTokens} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return bunDB
}

func setupRepo(t *testing.T) membership.RepositoryManager {
	t.Helper()
	repo := membership.NewRepositoryManager(setupDB(t))
	repo.MustValidate()
	return repo
}
