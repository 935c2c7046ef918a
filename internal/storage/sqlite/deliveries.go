package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hyperion/internal/storage"
)

type deliveryStore struct {
	db *sql.DB
}

func newDeliveryStore(db *sql.DB) storage.DeliveryStore {
	return &deliveryStore{db: db}
}

func (s *deliveryStore) Record(ctx context.Context, d storage.Delivery) error {
	if d.DeliveredAt.IsZero() {
		d.DeliveredAt = time.Now()
	}

	query := `
		INSERT INTO deliveries (source, item_id, title, url, channel_id, error, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	errText := sql.NullString{String: d.Error, Valid: d.Error != ""}

	_, err := s.db.ExecContext(ctx, query, d.Source, d.ItemID, d.Title, d.URL, d.ChannelID, errText, d.DeliveredAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

func (s *deliveryStore) Recent(ctx context.Context, limit int) ([]storage.Delivery, error) {
	query := `
		SELECT id, source, item_id, title, url, channel_id, error, delivered_at
		FROM deliveries
		ORDER BY delivered_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]storage.Delivery, 0, limit)
	for rows.Next() {
		var d storage.Delivery
		var errText sql.NullString

		err := rows.Scan(
			&d.ID,
			&d.Source,
			&d.ItemID,
			&d.Title,
			&d.URL,
			&d.ChannelID,
			&errText,
			&d.DeliveredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}

		d.Error = errText.String
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deliveries: %w", err)
	}

	return deliveries, nil
}

func (s *deliveryStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE delivered_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old deliveries: %w", err)
	}

	return result.RowsAffected()
}
