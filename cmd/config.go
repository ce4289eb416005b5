package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"handoff/internal/adapters/out/postgres"
	"handoff/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

const EnvPrefix = "HANDOFF"

const (
	TransportLog    = "log"
	TransportPubSub = "pubsub"
)

// Config is read from HANDOFF_* environment variables.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	DBDriver       string `envconfig:"DB_DRIVER" default:"postgres"`
	DBDSN          string `envconfig:"DB_DSN"`
	DBHost         string `envconfig:"DB_HOST"`
	DBPort         string `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME"`
	DBSslMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBDebug        bool   `envconfig:"DB_DEBUG" default:"false"`
	AutoMigrate    bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	JWTSecret       string        `envconfig:"JWT_SECRET"`
	JWTIssuer       string        `envconfig:"JWT_ISSUER"`
	JWTLeeway       time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
	SchedulerSecret string        `envconfig:"SCHEDULER_SECRET"`

	SweepSchedule     string        `envconfig:"SWEEP_SCHEDULE" default:"@every 5m"`
	SweepBatchSize    int           `envconfig:"SWEEP_BATCH_SIZE" default:"100"`
	OutboxSchedule    string        `envconfig:"OUTBOX_SCHEDULE" default:"@every 15s"`
	OutboxBatchSize   int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	OutboxMaxAttempts int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"10"`
	JobTimeout        time.Duration `envconfig:"JOB_TIMEOUT" default:"2m"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	LockTTL           time.Duration `envconfig:"LOCK_TTL" default:"10m"`

	NotificationTransport string        `envconfig:"NOTIFICATION_TRANSPORT" default:"log"`
	SettlementTransport   string        `envconfig:"SETTLEMENT_TRANSPORT" default:"log"`
	GCPProjectID          string        `envconfig:"GCP_PROJECT_ID"`
	NotificationTopic     string        `envconfig:"NOTIFICATION_TOPIC" default:"handoff-notifications"`
	SettlementTopic       string        `envconfig:"SETTLEMENT_TOPIC" default:"handoff-settlements"`
	PublishTimeout        time.Duration `envconfig:"PUBLISH_TIMEOUT" default:"15s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// LoadConfig reads an optional .env file from the working directory and then
// the environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings every command needs.
func (c Config) Validate() error {
	var err error
	switch c.DBDriver {
	case postgres.DriverPostgres, postgres.DriverSQLite:
	default:
		err = multierr.Append(err, fmt.Errorf("%s_DB_DRIVER must be postgres or sqlite, got %q", EnvPrefix, c.DBDriver))
	}
	if c.DSN() == "" {
		err = multierr.Append(err, fmt.Errorf("%s_DB_DSN or %s_DB_HOST is required", EnvPrefix, EnvPrefix))
	}
	for name, transport := range map[string]string{
		"NOTIFICATION_TRANSPORT": c.NotificationTransport,
		"SETTLEMENT_TRANSPORT":   c.SettlementTransport,
	} {
		if transport != TransportLog && transport != TransportPubSub {
			err = multierr.Append(err, fmt.Errorf("%s_%s must be log or pubsub, got %q", EnvPrefix, name, transport))
		}
	}
	if c.usesPubSub() && strings.TrimSpace(c.GCPProjectID) == "" {
		err = multierr.Append(err, fmt.Errorf("%s_GCP_PROJECT_ID is required for the pubsub transport", EnvPrefix))
	}
	return err
}

// ValidateServe checks the settings of the HTTP API.
func (c Config) ValidateServe() error {
	var err error
	if len(c.JWTSecret) < 32 {
		err = multierr.Append(err, fmt.Errorf("%s_JWT_SECRET must be at least 32 bytes", EnvPrefix))
	}
	if c.SchedulerSecret == "" {
		err = multierr.Append(err, fmt.Errorf("%s_SCHEDULER_SECRET is required", EnvPrefix))
	}
	return err
}

// DSN returns HANDOFF_DB_DSN or, for postgres, one built from the host fields.
func (c Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == postgres.DriverPostgres && c.DBHost != "" {
		return postgres.DSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
	}
	return ""
}

func (c Config) DBOptions(log *logger.Logger) postgres.Options {
	return postgres.Options{
		Log:             log,
		Driver:          c.DBDriver,
		DSN:             c.DSN(),
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: time.Hour,
		Debug:           c.DBDebug,
	}
}

func (c Config) usesPubSub() bool {
	return c.NotificationTransport == TransportPubSub || c.SettlementTransport == TransportPubSub
}
