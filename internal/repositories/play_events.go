package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mixradio/internal/models"
	"github.com/desertthunder/mixradio/internal/shared"
)

// PlayEventRepository stores play history snapshots.
type PlayEventRepository struct {
	db *sql.DB
}

// NewPlayEventRepository creates a new [PlayEventRepository] with the given database connection
func NewPlayEventRepository(db *sql.DB) *PlayEventRepository {
	return &PlayEventRepository{db: db}
}

// Record inserts events for userID in one transaction, skipping ones already stored.
// It returns how many were new.
func (r *PlayEventRepository) Record(ctx context.Context, userID string, events []models.PlayEvent) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists := `SELECT EXISTS(SELECT 1 FROM play_events WHERE user_id = ? AND product_id = ? AND played_at = ?)`
	insert := `
		INSERT INTO play_events (id, sequence, user_id, product_id, product_name, performers, action, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	added := 0
	for _, e := range events {
		playedAt := e.PlayedAt.UTC()

		var found bool
		if err := tx.QueryRowContext(ctx, exists, userID, e.Product.ID, playedAt).Scan(&found); err != nil {
			return 0, fmt.Errorf("failed to check play event: %w", err)
		}
		if found {
			continue
		}

		sequence, err := nextSequenceTx(ctx, tx, "play_events")
		if err != nil {
			return 0, fmt.Errorf("failed to generate sequence: %w", err)
		}

		_, err = tx.ExecContext(ctx, insert, shared.GenerateID(), sequence, userID, e.Product.ID, e.Product.Name, e.Product.PerformerNames(), e.Action, playedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert play event: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit play events: %w", err)
	}
	return added, nil
}

// List returns the newest events for userID first. limit <= 0 returns everything.
func (r *PlayEventRepository) List(ctx context.Context, userID string, limit int) ([]models.PlayEvent, error) {
	query := `
		SELECT product_id, product_name, performers, action, played_at
		FROM play_events
		WHERE user_id = ?
		ORDER BY played_at DESC, sequence DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query play events: %w", err)
	}
	defer rows.Close()

	var events []models.PlayEvent
	for rows.Next() {
		var (
			productID  string
			name       string
			performers string
			action     string
			playedAt   time.Time
		)
		if err := rows.Scan(&productID, &name, &performers, &action, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play event: %w", err)
		}

		e := models.PlayEvent{Action: action, PlayedAt: playedAt.UTC(), Product: models.Product{ID: productID, Name: name}}
		if performers != "" {
			e.Product.Performers = []models.Artist{{Name: performers}}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play events: %w", err)
	}
	return events, nil
}

// Count returns how many events are stored for userID.
func (r *PlayEventRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM play_events WHERE user_id = ?", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count play events: %w", err)
	}
	return n, nil
}
