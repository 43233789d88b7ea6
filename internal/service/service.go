// Package service holds the business rules that sit between HTTP handlers and repositories.
package service

import (
	"context"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"
)

// ActivityPublisher receives ledger events after they commit. Delivery is best effort.
type ActivityPublisher interface {
	Publish(ctx context.Context, event models.ActivityEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.ActivityEvent) error { return nil }

// invalidateCommunity must succeed before a write that changed the community's
// cached detail is acknowledged.
func invalidateCommunity(ctx context.Context, store *cache.Store, name string) error {
	if err := store.InvalidateCommunity(ctx, name); err != nil {
		middleware.Logger.ErrorContext(ctx, "community cache invalidation failed",
			slog.String("community", name),
			slog.String("error", err.Error()),
		)
		return models.NewInternalError(err)
	}
	return nil
}
