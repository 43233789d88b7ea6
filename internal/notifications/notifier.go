// Package notifications delivers committed engagement events to downstream consumers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
)

const activityChannelPattern = "activity:user:*"

// ActivityChannel is the pub/sub channel that carries events on a user's posts.
func ActivityChannel(authorID uint) string {
	return fmt.Sprintf("activity:user:%d", authorID)
}

// Notifier publishes activity events into Redis channels keyed by post author.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) Name() string { return "redis" }

// Publish sends event to the channel of the post's author.
func (n *Notifier) Publish(ctx context.Context, event models.ActivityEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}
	return n.rdb.Publish(ctx, ActivityChannel(event.AuthorID), payload).Err()
}

// StartActivitySubscriber subscribes to every author channel and calls onEvent for
// each decoded event until ctx is done. Undecodable payloads are logged and skipped.
func (n *Notifier) StartActivitySubscriber(
	ctx context.Context, onEvent func(channel string, event models.ActivityEvent),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, activityChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", activityChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.ActivityEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					middleware.Logger.Warn("dropping malformed activity event",
						slog.String("channel", msg.Channel), slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in activity subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(msg.Channel, event)
				}()
			}
		}
	}()

	return nil
}
