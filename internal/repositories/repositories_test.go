package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/desertthunder/mixradio/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	t.Run("increments", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		ctx := context.Background()
		for want := 1; want <= 3; want++ {
			got, err := NextSequence(ctx, db, "play_events")
			if err != nil {
				t.Fatalf("failed to get sequence: %v", err)
			}
			if got != want {
				t.Errorf("expected sequence %d, got %d", want, got)
			}
		}
	})

	t.Run("missing table", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NextSequence(context.Background(), db, "nope"); err == nil {
			t.Fatal("expected error for a table without a sequence")
		}
	})
}
