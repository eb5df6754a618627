package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/neurobank/internal/db"
	"github.com/vytor/neurobank/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied
// and foreign keys enabled. A single connection keeps the in-memory schema alive.
func NewTestDB(t *testing.T) *sqlx.DB {
	conn, err := sqlx.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), conn))
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertUser stores a user with a throwaway password hash and returns it.
func InsertUser(t *testing.T, conn *sqlx.DB, email string) models.User {
	u := models.User{
		ID:           uuid.NewString(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	_, err := conn.Exec(`INSERT INTO users (id, first_name, last_name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.CreatedAt)
	require.NoError(t, err)
	return u
}
