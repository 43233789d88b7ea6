package notifications

import (
	"context"
	"errors"
	"log/slog"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
)

// Sink is one destination for activity events.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event models.ActivityEvent) error
}

// Fanout publishes each event to every sink. A failing sink does not stop the others.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Publish returns the joined errors of the sinks that failed.
func (f *Fanout) Publish(ctx context.Context, event models.ActivityEvent) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			observability.ActivityPublishFailures.WithLabelValues(sink.Name()).Inc()
			middleware.Logger.WarnContext(ctx, "activity sink failed",
				slog.String("sink", sink.Name()),
				slog.Uint64("activity_id", uint64(event.ActivityID)),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of configured sinks.
func (f *Fanout) Len() int {
	return len(f.sinks)
}
