package config

const (
	EnvPort           = "PORT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"

	EnvTimezone          = "TIMEZONE"
	EnvSlotTimes         = "SLOT_TIMES"
	EnvAdmissionWeekday  = "ADMISSION_WEEKDAY"
	EnvAdmissionOpenHour = "ADMISSION_OPEN_HOUR"
	EnvCloseHour         = "CLOSE_HOUR"
	EnvTickInterval      = "TICK_INTERVAL"
	EnvWeekdayLabels     = "WEEKDAY_LABELS"

	EnvQuotaCap      = "QUOTA_CAP"
	EnvQuotaTimes    = "QUOTA_TIMES"
	EnvQuotaWeekdays = "QUOTA_WEEKDAYS"

	EnvAdminSecret      = "ADMIN_SECRET"
	EnvAdminTokenSecret = "ADMIN_TOKEN_SECRET"
	EnvAdminTokenTTL    = "ADMIN_TOKEN_TTL"

	EnvStoreBackend           = "STORE_BACKEND"
	EnvStorePath              = "STORE_PATH"
	EnvStoreConditionalWrites = "STORE_CONDITIONAL_WRITES"
	EnvStorePollInterval      = "STORE_POLL_INTERVAL"
	EnvStoreWriteTimeout      = "STORE_WRITE_TIMEOUT"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvFirebaseDatabaseURL     = "FIREBASE_DATABASE_URL"
	EnvFirebaseProjectID       = "FIREBASE_PROJECT_ID"
	EnvFirebaseCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvFirebaseCredentialsJSON = "FIREBASE_SERVICE_ACCOUNT_JSON"

	EnvKafkaEnabled     = "KAFKA_ENABLED"
	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvKafkaTopic       = "KAFKA_RESERVATIONS_TOPIC"
	EnvKafkaDLQTopic    = "KAFKA_DLQ_TOPIC"
	EnvKafkaGroupID     = "KAFKA_AUDIT_GROUP_ID"
	EnvKafkaCompression = "KAFKA_COMPRESSION"
	EnvKafkaMaxRetries  = "KAFKA_MAX_RETRIES"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
