package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"slotbook/pkg/config"
	"slotbook/pkg/events"
	"slotbook/pkg/logger"
)

const ServiceName = "audit-worker"

// The audit worker writes one structured log line per reservation change, so
// the log pipeline keeps a history the snapshot itself does not.
func main() {
	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled {
		cfg.Log.Fatal("Audit worker requires KAFKA_ENABLED=true")
	}

	consumer, err := events.NewConsumer(events.ConsumerConfig{
		Brokers:    cfg.KafkaBrokers,
		Topic:      cfg.KafkaTopic,
		GroupID:    cfg.KafkaGroupID,
		DLQTopic:   cfg.KafkaDLQTopic,
		MaxRetries: cfg.KafkaMaxRetries,
	}, auditHandler(cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(events.RecoveryConsumerMiddleware(cfg.Log))
	consumer.Use(events.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting audit worker", "topic", cfg.KafkaTopic, "group_id", cfg.KafkaGroupID)
	err = consumer.Start(ctx)
	if closeErr := consumer.Close(); closeErr != nil {
		cfg.Log.Error("Failed to close consumer", "error", closeErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, events.ErrConsumerClosed) {
		cfg.Log.Fatal("Audit worker stopped", "error", err)
	}
	cfg.Log.Info("Audit worker stopped")
}

func auditHandler(log *logger.Logger) events.MessageHandler {
	return func(ctx context.Context, msg events.Message) error {
		evt, err := msg.DecodeReservationEvent()
		if err != nil {
			return err
		}
		log.Info("Reservation event",
			"event_id", msg.EventID(),
			"type", evt.Type,
			"date", evt.Date,
			"time", evt.Time,
			"name", evt.Name,
			"occurred_at", evt.OccurredAt,
		)
		return nil
	}
}
