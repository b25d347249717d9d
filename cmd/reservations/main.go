package main

import (
	"context"
	"time"
	_ "time/tzdata"

	"slotbook/internal/reservations/handler"
	"slotbook/internal/reservations/service"
	"slotbook/internal/reservations/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/events"
	"slotbook/pkg/store"
	firebasestore "slotbook/pkg/store/firebase"
	"slotbook/pkg/store/memory"
	mongostore "slotbook/pkg/store/mongo"
	redisstore "slotbook/pkg/store/redis"
)

const (
	ServiceName    = "reservations"
	publishTimeout = 5 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Reservations service")

	st := openStore(cfg)
	// Events go out after the response; Close drains them on shutdown.
	publisher := events.NewAsyncPublisher(initPublisher(cfg), publishTimeout, cfg.Log)

	session := service.NewSession(st, service.Policy(cfg), cfg.TickInterval, cfg.Log)
	startCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreWriteTimeout)
	if err := session.Start(startCtx); err != nil {
		cancel()
		cfg.Log.Fatal("Failed to start reservation session", "error", err)
	}
	cancel()

	reservationValidator := validator.NewReservationValidator(cfg.Log, cfg.SlotTimes)
	reservationService := service.NewReservationService(session, st, reservationValidator, publisher, cfg)
	adminService := service.NewAdminService(session, reservationValidator, cfg)
	cfg.Log.Info("Reservations service initialized", "store_backend", cfg.StoreBackend, "store_path", cfg.StorePath)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(st, session, cfg.Log),
		handler.NewReservationHandler(reservationService, cfg.Log),
		handler.NewAdminHandler(adminService, cfg.Log),
		handler.NewStreamHandler(session, cfg.AllowedOrigins, cfg.Log),
	)
	serverApp.OnShutdown(func(context.Context) {
		session.Stop()
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
		if err := st.Close(); err != nil {
			cfg.Log.Error("Failed to close store", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}

func openStore(cfg *config.Config) store.Store {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		cfg.SetMongo()
		return mongostore.New(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.StorePath, cfg.StorePollInterval, cfg.Log)
	case config.StoreRedis:
		cfg.SetRedis()
		return redisstore.New(cfg.Client.Redis, cfg.StorePath, cfg.Log)
	case config.StoreFirebase:
		cfg.SetFirebase()
		return firebasestore.New(cfg.Client.Firebase, cfg.StorePath, cfg.StorePollInterval, cfg.Log)
	default:
		cfg.Log.Warn("Using in-memory store; reservations are lost on restart")
		return memory.New(nil)
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		return events.NopPublisher{}
	}

	producer, err := events.NewProducer(events.ProducerConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		DLQTopic:    cfg.KafkaDLQTopic,
		Compression: cfg.KafkaCompression,
		MaxAttempts: cfg.KafkaMaxRetries + 1,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(events.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Publishing reservation events", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	return events.NewKafkaPublisher(producer, ServiceName)
}
