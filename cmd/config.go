package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pizzaworkflow/internal/pkg/errs"
)

// Backends selectable through STATE_BACKEND and BUS_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendKafka    = "kafka"
)

const (
	DefaultHTTPPort           = "8080"
	DefaultNotificationTopic  = "orders"
	DefaultStateStoreName     = "pizzastatestore"
	DefaultKafkaConsumerGroup = "pizzaworkflow"
)

type Config struct {
	HTTPPort string

	StateBackend string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSslMode    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BusBackend         string
	KafkaBrokers       []string
	KafkaConsumerGroup string

	NotificationTopic string
	StateStoreName    string
	// ProjectionStoreName, when set, names a second store that follows the
	// notification topic through the order subscriber.
	ProjectionStoreName string

	StageDurationScale float64
	ValidationTimeout  time.Duration
	RecoverySchedule   string
	ExpirySchedule     string
}

// LoadConfig reads the configuration through getenv, applying defaults for
// unset values.
func LoadConfig(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPPort:            get("HTTP_PORT", DefaultHTTPPort),
		StateBackend:        strings.ToLower(get("STATE_BACKEND", BackendMemory)),
		DBHost:              get("DB_HOST", "localhost"),
		DBPort:              get("DB_PORT", "5432"),
		DBUser:              get("DB_USER", ""),
		DBPassword:          getenv("DB_PASSWORD"),
		DBName:              get("DB_NAME", ""),
		DBSslMode:           get("DB_SSLMODE", "disable"),
		RedisAddr:           get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getenv("REDIS_PASSWORD"),
		BusBackend:          strings.ToLower(get("BUS_BACKEND", BackendMemory)),
		KafkaConsumerGroup:  get("KAFKA_CONSUMER_GROUP", DefaultKafkaConsumerGroup),
		NotificationTopic:   get("NOTIFICATION_TOPIC", DefaultNotificationTopic),
		StateStoreName:      get("STATE_STORE_NAME", DefaultStateStoreName),
		ProjectionStoreName: get("PROJECTION_STORE_NAME", ""),
		RecoverySchedule:    get("RECOVERY_SCHEDULE", ""),
		ExpirySchedule:      get("EXPIRY_SCHEDULE", ""),
		StageDurationScale:  1,
	}

	for _, broker := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	var err error
	if v := get("REDIS_DB", ""); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return Config{}, errs.NewValueIsInvalidErrorWithCause("REDIS_DB", err)
		}
	}
	if v := get("STAGE_DURATION_SCALE", ""); v != "" {
		if cfg.StageDurationScale, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, errs.NewValueIsInvalidErrorWithCause("STAGE_DURATION_SCALE", err)
		}
		if cfg.StageDurationScale < 0 {
			return Config{}, errs.NewValueIsInvalidErrorWithCause("STAGE_DURATION_SCALE",
				fmt.Errorf("%v is negative", cfg.StageDurationScale))
		}
	}
	if v := get("VALIDATION_TIMEOUT", ""); v != "" && v != "0" {
		if cfg.ValidationTimeout, err = time.ParseDuration(v); err != nil {
			return Config{}, errs.NewValueIsInvalidErrorWithCause("VALIDATION_TIMEOUT", err)
		}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StateBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DBUser == "" || c.DBName == "" {
			return errs.NewValueIsRequiredErrorWithCause("DB_USER/DB_NAME",
				fmt.Errorf("required by STATE_BACKEND=%s", c.StateBackend))
		}
	default:
		return errs.NewValueIsInvalidErrorWithCause("STATE_BACKEND",
			fmt.Errorf("%q is not one of memory, redis, postgres", c.StateBackend))
	}

	switch c.BusBackend {
	case BackendMemory:
	case BackendKafka:
		if len(c.KafkaBrokers) == 0 {
			return errs.NewValueIsRequiredErrorWithCause("KAFKA_BROKERS",
				fmt.Errorf("required by BUS_BACKEND=%s", c.BusBackend))
		}
	default:
		return errs.NewValueIsInvalidErrorWithCause("BUS_BACKEND",
			fmt.Errorf("%q is not one of memory, kafka", c.BusBackend))
	}
	return nil
}
