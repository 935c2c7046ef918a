package storage

import (
	"context"
	"time"
)

type StorageInterface interface {
	Deliveries() DeliveryStore
	Close(ctx context.Context) error
}

// Delivery is one attempted notification post. Error is empty on success.
type Delivery struct {
	ID          int64
	Source      string
	ItemID      string
	Title       string
	URL         string
	ChannelID   string
	Error       string
	DeliveredAt time.Time
}

func (d Delivery) Succeeded() bool {
	return d.Error == ""
}

type DeliveryStore interface {
	Record(ctx context.Context, d Delivery) error
	Recent(ctx context.Context, limit int) ([]Delivery, error)
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}
