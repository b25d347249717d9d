package events

import (
	"context"
	"time"

	"slotbook/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg Message, next MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			log.Error("Failed to publish message",
				"topic", msg.Topic,
				"key", msg.Key,
				"event_id", msg.EventID(),
				"event_type", msg.EventType(),
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
		log.Debug("Published message",
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
			"duration", time.Since(start),
		)
		return nil
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) ConsumerMiddleware {
	return func(ctx context.Context, msg Message, next MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		args := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("Failed to handle message", append(args, "error", err)...)
			return err
		}
		log.Debug("Handled message", args...)
		return nil
	}
}

// RecoveryConsumerMiddleware turns a handler panic into a permanent error.
func RecoveryConsumerMiddleware(log *logger.Logger) ConsumerMiddleware {
	return func(ctx context.Context, msg Message, next MessageHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic while handling message", "event_id", msg.EventID(), "panic", r)
				err = NewPermanentError("handler panicked", nil)
			}
		}()
		return next(ctx, msg)
	}
}
