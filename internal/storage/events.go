package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
	"github.com/google/uuid"
)

const eventColumns = `id, hash, user_id, COALESCE(session_id, ''), COALESCE(platform, ''),
	COALESCE(product_url, ''), COALESCE(product_title, ''), COALESCE(price, 0), occurred_at`

// SaveEvents stores product events, skipping duplicates. It returns the
// number of events actually inserted.
func (s *SQLStorage) SaveEvents(ctx context.Context, events []model.ProductEvent) (int, error) {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateEvents(events); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.saveEventsTx(ctx, tx, events)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit events: %w", err)
	}
	return inserted, nil
}

func (s *SQLStorage) saveEventsTx(ctx context.Context, tx *sql.Tx, events []model.ProductEvent) (int, error) {
	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO product_events (
			id, hash, user_id, session_id, platform, product_url,
			product_title, price, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (hash) DO NOTHING
	`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range events {
		event := &events[i]
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		event.Timestamp = event.Timestamp.UTC()
		if event.Hash == "" {
			event.Hash = event.GenerateHash()
		}

		result, execErr := stmt.ExecContext(ctx,
			event.ID,
			event.Hash,
			event.UserID,
			event.SessionID,
			strings.TrimSpace(event.Platform),
			event.ProductURL,
			strings.TrimSpace(event.ProductTitle),
			event.Price,
			event.Timestamp,
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert event %s: %w", event.ID, execErr)
		}

		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", affErr)
		}
		inserted += int(affected)
	}

	return inserted, nil
}

// LookupEvents returns every event recorded for a user, oldest first.
func (s *SQLStorage) LookupEvents(ctx context.Context, userID string) ([]model.ProductEvent, error) {
	return s.ListEvents(ctx, userID, service.EventFilter{})
}

// ListEvents returns a user's events, optionally restricted to a time range.
func (s *SQLStorage) ListEvents(ctx context.Context, userID string, filter service.EventFilter) ([]model.ProductEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	query := `SELECT ` + eventColumns + ` FROM product_events WHERE user_id = ?`
	args := []any{userID}

	if filter.StartDate != nil {
		query += ` AND occurred_at >= ?`
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		query += ` AND occurred_at <= ?`
		args = append(args, filter.EndDate.UTC())
	}
	query += ` ORDER BY occurred_at, created_at, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.ProductEvent
	for rows.Next() {
		var event model.ProductEvent
		if err := rows.Scan(
			&event.ID,
			&event.Hash,
			&event.UserID,
			&event.SessionID,
			&event.Platform,
			&event.ProductURL,
			&event.ProductTitle,
			&event.Price,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
var _ service.Storage = (*SQLStorage)(nil)
