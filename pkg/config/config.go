package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"slotbook/pkg/client"
	"slotbook/pkg/logger"

	"github.com/joho/godotenv"
)

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	Port           string
	AllowedOrigins []string

	Timezone          string
	Location          *time.Location
	SlotTimes         []string
	AdmissionWeekday  time.Weekday
	AdmissionOpenHour int
	CloseHour         int
	TickInterval      time.Duration
	WeekdayLabels     []string

	QuotaCap      int
	QuotaTimes    []string
	QuotaWeekdays []time.Weekday

	AdminSecret      string
	AdminTokenSecret string
	AdminTokenTTL    time.Duration

	StoreBackend           string
	StorePath              string
	StoreConditionalWrites bool
	StorePollInterval      time.Duration
	StoreWriteTimeout      time.Duration

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FirebaseDatabaseURL     string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string

	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaDLQTopic    string
	KafkaGroupID     string
	KafkaCompression string
	KafkaMaxRetries  int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client

	// problems found while parsing, reported by Validate
	parseErrors []string
}

func Load(serviceName string) *Config {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvStr(EnvPort, DefaultPort),
		AllowedOrigins: splitList(getEnvStr(EnvAllowedOrigins, DefaultAllowedOrigins)),

		Timezone:          getEnvStr(EnvTimezone, DefaultTimezone),
		SlotTimes:         splitList(getEnvStr(EnvSlotTimes, DefaultSlotTimes)),
		AdmissionOpenHour: getEnvNum(EnvAdmissionOpenHour, DefaultAdmissionOpenHour),
		CloseHour:         getEnvNum(EnvCloseHour, DefaultCloseHour),
		TickInterval:      getEnvDuration(EnvTickInterval, DefaultTickInterval),
		WeekdayLabels:     splitList(getEnvStr(EnvWeekdayLabels, DefaultWeekdayLabels)),

		QuotaCap:   getEnvNum(EnvQuotaCap, DefaultQuotaCap),
		QuotaTimes: splitList(getEnvStr(EnvQuotaTimes, DefaultQuotaTimes)),

		AdminSecret:      getEnvStr(EnvAdminSecret, ""),
		AdminTokenSecret: getEnvStr(EnvAdminTokenSecret, ""),
		AdminTokenTTL:    getEnvDuration(EnvAdminTokenTTL, DefaultAdminTokenTTL),

		StoreBackend:           strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend)),
		StorePath:              getEnvStr(EnvStorePath, DefaultStorePath),
		StoreConditionalWrites: getEnvBool(EnvStoreConditionalWrites, false),
		StorePollInterval:      getEnvDuration(EnvStorePollInterval, DefaultStorePollInterval),
		StoreWriteTimeout:      getEnvDuration(EnvStoreWriteTimeout, DefaultStoreWriteTimeout),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, 0),

		FirebaseDatabaseURL:     getEnvStr(EnvFirebaseDatabaseURL, ""),
		FirebaseProjectID:       getEnvStr(EnvFirebaseProjectID, ""),
		FirebaseCredentialsFile: getEnvStr(EnvFirebaseCredentialsFile, ""),
		FirebaseCredentialsJSON: getEnvStr(EnvFirebaseCredentialsJSON, ""),

		KafkaEnabled:     getEnvBool(EnvKafkaEnabled, false),
		KafkaBrokers:     splitList(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		KafkaTopic:       getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		KafkaDLQTopic:    getEnvStr(EnvKafkaDLQTopic, ""),
		KafkaGroupID:     getEnvStr(EnvKafkaGroupID, DefaultKafkaGroupID),
		KafkaCompression: strings.ToLower(getEnvStr(EnvKafkaCompression, DefaultKafkaCompression)),
		KafkaMaxRetries:  getEnvNum(EnvKafkaMaxRetries, DefaultKafkaMaxRetries),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	cfg.parseCalendar(
		getEnvStr(EnvAdmissionWeekday, DefaultAdmissionWeekday),
		getEnvStr(EnvQuotaWeekdays, DefaultQuotaWeekdays),
	)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) parseCalendar(admissionWeekday, quotaWeekdays string) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		cfg.parseErrors = append(cfg.parseErrors, fmt.Sprintf("Timezone %q could not be loaded: %v", cfg.Timezone, err))
	} else {
		cfg.Location = loc
	}

	day, err := ParseWeekday(admissionWeekday)
	if err != nil {
		cfg.parseErrors = append(cfg.parseErrors, fmt.Sprintf("AdmissionWeekday: %v", err))
	}
	cfg.AdmissionWeekday = day

	for _, raw := range splitList(quotaWeekdays) {
		day, err := ParseWeekday(raw)
		if err != nil {
			cfg.parseErrors = append(cfg.parseErrors, fmt.Sprintf("QuotaWeekdays: %v", err))
			continue
		}
		cfg.QuotaWeekdays = append(cfg.QuotaWeekdays, day)
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) SetFirebase() {
	cfg.Client.SetFirebase(cfg.Log, client.FirebaseOptions{
		DatabaseURL:     cfg.FirebaseDatabaseURL,
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredentialsFile,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
}

func (cfg *Config) Validate() error {
	errors := append([]string(nil), cfg.parseErrors...)

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if len(cfg.SlotTimes) == 0 {
		errors = append(errors, "SlotTimes cannot be empty")
	}
	for _, t := range cfg.SlotTimes {
		if !clockRegex.MatchString(t) {
			errors = append(errors, fmt.Sprintf("SlotTimes entries must be in HH:MM format (00:00-23:59), got: %s", t))
		}
	}
	if !slices.IsSorted(cfg.SlotTimes) || len(slices.Compact(slices.Clone(cfg.SlotTimes))) != len(cfg.SlotTimes) {
		errors = append(errors, fmt.Sprintf("SlotTimes must be ascending without duplicates, got: %v", cfg.SlotTimes))
	}

	if cfg.AdmissionOpenHour < 0 || cfg.AdmissionOpenHour > 23 {
		errors = append(errors, fmt.Sprintf("AdmissionOpenHour must be between 0 and 23, got: %d", cfg.AdmissionOpenHour))
	}
	if cfg.CloseHour < 0 || cfg.CloseHour > 23 {
		errors = append(errors, fmt.Sprintf("CloseHour must be between 0 and 23, got: %d", cfg.CloseHour))
	}
	if cfg.TickInterval <= 0 {
		errors = append(errors, fmt.Sprintf("TickInterval must be positive, got: %s", cfg.TickInterval))
	}
	if len(cfg.WeekdayLabels) != 7 {
		errors = append(errors, fmt.Sprintf("WeekdayLabels must list 7 labels starting with Sunday, got: %d", len(cfg.WeekdayLabels)))
	}

	if cfg.QuotaCap < 0 {
		errors = append(errors, fmt.Sprintf("QuotaCap cannot be negative, got: %d", cfg.QuotaCap))
	}
	for _, t := range cfg.QuotaTimes {
		if !slices.Contains(cfg.SlotTimes, t) {
			errors = append(errors, fmt.Sprintf("QuotaTimes entry %s is not one of SlotTimes", t))
		}
	}

	if cfg.AdminSecret != "" && len(cfg.AdminTokenSecret) < 16 {
		errors = append(errors, "AdminTokenSecret must be at least 16 characters when AdminSecret is set")
	}
	if cfg.AdminTokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("AdminTokenTTL must be positive, got: %s", cfg.AdminTokenTTL))
	}

	switch cfg.StoreBackend {
	case StoreMemory:
	case StoreMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			errors = append(errors, "RedisAddr cannot be empty")
		}
	case StoreFirebase:
		if !strings.HasPrefix(cfg.FirebaseDatabaseURL, "https://") && !strings.HasPrefix(cfg.FirebaseDatabaseURL, "http://") {
			errors = append(errors, fmt.Sprintf("FirebaseDatabaseURL must be an http(s) URL, got: %q", cfg.FirebaseDatabaseURL))
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [memory, mongo, redis, firebase], got: %s", cfg.StoreBackend))
	}
	if cfg.StorePath == "" || strings.ContainsAny(cfg.StorePath, ".$#[]") {
		errors = append(errors, fmt.Sprintf("StorePath must be non-empty and free of . $ # [ ], got: %q", cfg.StorePath))
	}
	if cfg.StorePollInterval <= 0 {
		errors = append(errors, fmt.Sprintf("StorePollInterval must be positive, got: %s", cfg.StorePollInterval))
	}
	if cfg.StoreWriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("StoreWriteTimeout must be positive, got: %s", cfg.StoreWriteTimeout))
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			errors = append(errors, "KafkaBrokers cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaTopic == "" {
			errors = append(errors, "KafkaTopic cannot be empty when Kafka is enabled")
		}
		if !slices.Contains([]string{"none", "gzip", "snappy", "lz4", "zstd"}, cfg.KafkaCompression) {
			errors = append(errors, fmt.Sprintf("KafkaCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.KafkaCompression))
		}
		if cfg.KafkaMaxRetries < 0 {
			errors = append(errors, fmt.Sprintf("KafkaMaxRetries cannot be negative, got: %d", cfg.KafkaMaxRetries))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"allowed_origins", cfg.AllowedOrigins,
		"timezone", cfg.Timezone,
		"slot_times", cfg.SlotTimes,
		"admission_weekday", cfg.AdmissionWeekday.String(),
		"admission_open_hour", cfg.AdmissionOpenHour,
		"close_hour", cfg.CloseHour,
		"tick_interval", cfg.TickInterval,
		"quota_cap", cfg.QuotaCap,
		"quota_times", cfg.QuotaTimes,
		"quota_weekdays", cfg.QuotaWeekdays,
		"admin_enabled", cfg.AdminSecret != "",
		"admin_token_ttl", cfg.AdminTokenTTL,
		"store_backend", cfg.StoreBackend,
		"store_path", cfg.StorePath,
		"store_conditional_writes", cfg.StoreConditionalWrites,
		"store_poll_interval", cfg.StorePollInterval,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"firebase_database_url", cfg.FirebaseDatabaseURL,
		"firebase_credentials_set", cfg.FirebaseCredentialsFile != "" || cfg.FirebaseCredentialsJSON != "",
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"kafka_dlq_topic", cfg.KafkaDLQTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts English names, three-letter abbreviations, or 0-6 with
// Sunday as 0.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if day, ok := weekdayNames[s]; ok {
		return day, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
