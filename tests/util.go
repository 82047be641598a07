package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/storage/database"
)

// PrepareDB opens a migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, email string,
	role account.Role,
	isActive bool,
) account.Account {
	t.Helper()
	tstamp := time.Now().UTC()
	acc, err := repo.CreateAccount(context.Background(), account.Account{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

// FreezeTime makes *nowFunc return at until the test ends.
func FreezeTime(t *testing.T, nowFunc *func() time.Time, at time.Time) {
	t.Helper()
	orig := *nowFunc
	*nowFunc = func() time.Time { return at }
	t.Cleanup(func() { *nowFunc = orig })
}
