package config

import "time"

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StoreRedis    = "redis"
	StoreFirebase = "firebase"
)

const (
	DefaultPort           = "8080"
	DefaultLogLevel       = "info"
	DefaultAllowedOrigins = "http://localhost:5173"

	DefaultTimezone          = "Asia/Seoul"
	DefaultSlotTimes         = "00:00,03:00,06:00,09:00,12:00,15:00,18:00,21:00"
	DefaultAdmissionWeekday  = "tuesday"
	DefaultAdmissionOpenHour = 12
	DefaultCloseHour         = 21
	DefaultTickInterval      = 1 * time.Minute
	DefaultWeekdayLabels     = "일,월,화,수,목,금,토"

	DefaultQuotaCap      = 3
	DefaultQuotaTimes    = "09:00,12:00,15:00"
	DefaultQuotaWeekdays = "mon,tue,wed,thu,fri"

	DefaultAdminTokenTTL = 30 * time.Minute

	DefaultStoreBackend      = StoreMemory
	DefaultStorePath         = "reservations"
	DefaultStorePollInterval = 2 * time.Second
	DefaultStoreWriteTimeout = 10 * time.Second

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBrokers     = "localhost:9092"
	DefaultKafkaTopic       = "reservations.events"
	DefaultKafkaGroupID     = "slotbook-audit"
	DefaultKafkaCompression = "snappy"
	DefaultKafkaMaxRetries  = 3

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 64 * 1024

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
