package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/mixradio/internal/models"
)

func playEvent(id, name string, at time.Time) models.PlayEvent {
	return models.PlayEvent{
		Action:   "play",
		PlayedAt: at,
		Product: models.Product{
			ID:         id,
			Name:       name,
			Performers: []models.Artist{{Name: "Massive Attack"}, {Name: "Tricky"}},
		},
	}
}

func TestPlayEventRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Record skips duplicates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlayEventRepository(db)
		events := []models.PlayEvent{
			playEvent("1", "Teardrop", base),
			playEvent("2", "Angel", base.Add(time.Minute)),
		}

		added, err := repo.Record(ctx, "user-1", events)
		if err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if added != 2 {
			t.Errorf("expected 2 added, got %d", added)
		}

		events = append(events, playEvent("3", "Karmacoma", base.Add(2*time.Minute)))
		added, err = repo.Record(ctx, "user-1", events)
		if err != nil {
			t.Fatalf("failed to record again: %v", err)
		}
		if added != 1 {
			t.Errorf("expected 1 added on second snapshot, got %d", added)
		}

		count, err := repo.Count(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 stored events, got %d", count)
		}
	})

	t.Run("Record requires user", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewPlayEventRepository(db).Record(ctx, "", nil); err == nil {
			t.Fatal("expected error for empty user id")
		}
	})

	t.Run("List newest first", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlayEventRepository(db)
		_, err := repo.Record(ctx, "user-1", []models.PlayEvent{
			playEvent("1", "Teardrop", base),
			playEvent("2", "Angel", base.Add(time.Hour)),
			playEvent("3", "Karmacoma", base.Add(2*time.Hour)),
		})
		if err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if _, err := repo.Record(ctx, "user-2", []models.PlayEvent{playEvent("9", "Other", base)}); err != nil {
			t.Fatalf("failed to record other user: %v", err)
		}

		events, err := repo.List(ctx, "user-1", 2)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Product.Name != "Karmacoma" || events[1].Product.Name != "Angel" {
			t.Errorf("unexpected order: %s, %s", events[0].Product.Name, events[1].Product.Name)
		}
		if got := events[0].Product.PerformerNames(); got != "Massive Attack, Tricky" {
			t.Errorf("expected joined performers, got %q", got)
		}
		if !events[0].PlayedAt.Equal(base.Add(2 * time.Hour)) {
			t.Errorf("unexpected played at %v", events[0].PlayedAt)
		}

		all, err := repo.List(ctx, "user-1", 0)
		if err != nil {
			t.Fatalf("failed to list all: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 events, got %d", len(all))
		}
	})
}
