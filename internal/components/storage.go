package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hyperion/internal/storage"
	_ "hyperion/internal/storage/sqlite"
)

type StorageComponent struct {
	storageType string
	dbPath      string
	retention   time.Duration
	logger      *slog.Logger
	store       storage.StorageInterface
}

func NewStorageComponent(storageType, dbPath string, retention time.Duration, logger *slog.Logger) *StorageComponent {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageComponent{
		storageType: storageType,
		dbPath:      dbPath,
		retention:   retention,
		logger:      logger,
	}
}

func (c *StorageComponent) Name() string {
	return StorageComponentName
}

func (c *StorageComponent) Dependencies() []string {
	return []string{}
}

func (c *StorageComponent) Validate() error {
	if c.storageType != storage.TypeNone && c.dbPath == "" {
		return fmt.Errorf("storage: database path is required")
	}
	return nil
}

func (c *StorageComponent) Initialize(ctx context.Context) error {
	if c.storageType == storage.TypeNone {
		c.logger.Info("Delivery log disabled")
		return nil
	}

	store, err := storage.New(c.storageType, c.dbPath)
	if err != nil {
		return fmt.Errorf("storage: failed to initialize store: %w", err)
	}
	c.store = store

	if c.retention > 0 {
		removed, err := store.Deliveries().DeleteOlderThan(ctx, c.retention)
		if err != nil {
			c.logger.Warn("Failed to prune delivery log", "error", err)
		} else if removed > 0 {
			c.logger.Info("Pruned delivery log", "removed", removed, "retention", c.retention)
		}
	}

	return nil
}

func (c *StorageComponent) Close(ctx context.Context) error {
	if c.store != nil {
		return c.store.Close(ctx)
	}
	return nil
}

// Deliveries returns nil when the delivery log is disabled.
func (c *StorageComponent) Deliveries() storage.DeliveryStore {
	if c.store == nil {
		return nil
	}
	return c.store.Deliveries()
}
