package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/configparser"
)

// Flags
var (
	modeFlag       = flag.String("mode", "", "application mode: matching | location-ingest")
	configPathFlag = flag.String("config-path", "config.yaml", "path to the YAML config file")
	helpFlag       = flag.Bool("help", false, "print help and exit")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidStorage  = errors.New("invalid storage driver")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode

		Storage    StorageConfig
		Database   DatabaseConfig
		Redis      RedisConfig
		RabbitMQ   RabbitMQConfig
		Kafka      KafkaConfig
		LocationIQ LocationIQConfig
		Services   ServicesConfig
		Auth       Auth
		Matching   MatchingConfig
		Sweeper    SweeperConfig
	}

	StorageConfig struct {
		Driver types.StorageDriver `env:"STORAGE_DRIVER" default:"postgres"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"campusride"`
		Password string `env:"DATABASE_PASSWORD" default:"campusride"`
		Database string `env:"DATABASE_DATABASE" default:"campusride"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	// RedisConfig enables the geo index for latest positions. Postgres keeps the history either way.
	RedisConfig struct {
		Enabled  bool   `env:"REDIS_ENABLED" default:"false"`
		Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
		Prefix   string `env:"REDIS_PREFIX" default:"campusride"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	KafkaConfig struct {
		Brokers []string `env:"KAFKA_BROKERS" default:"localhost:9092"`
		Topic   string   `env:"KAFKA_TOPIC" default:"location.heartbeats"`
		GroupID string   `env:"KAFKA_GROUP_ID" default:"campusride-location-ingest"`
	}

	LocationIQConfig struct {
		APIKey  string        `env:"LOCATIONIQ_API_KEY"`
		BaseURL string        `env:"LOCATIONIQ_BASE_URL" default:"https://us1.locationiq.com"`
		Timeout time.Duration `env:"LOCATIONIQ_TIMEOUT" default:"5s"`
	}

	ServicesConfig struct {
		Matching       string `env:"SERVICES_MATCHING" default:"3000"`
		LocationIngest string `env:"SERVICES_LOCATION_INGEST" default:"3001"`
	}

	Auth struct {
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"15m"`
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	MatchingConfig struct {
		NotifyRadiusKm        float64       `env:"MATCHING_NOTIFY_RADIUS_KM" default:"5"`
		NearbyDriversRadiusKm float64       `env:"MATCHING_NEARBY_DRIVERS_RADIUS_KM" default:"5"`
		NearbyRidesRadiusKm   float64       `env:"MATCHING_NEARBY_RIDES_RADIUS_KM" default:"10"`
		DefaultFareDistanceKm float64       `env:"MATCHING_DEFAULT_FARE_DISTANCE_KM" default:"5"`
		NotifyTimeout         time.Duration `env:"MATCHING_NOTIFY_TIMEOUT" default:"10s"`
		DefaultPageSize       int           `env:"MATCHING_DEFAULT_PAGE_SIZE" default:"20"`
		MaxPageSize           int           `env:"MATCHING_MAX_PAGE_SIZE" default:"100"`
	}

	SweeperConfig struct {
		Enabled        bool          `env:"SWEEPER_ENABLED" default:"true"`
		Interval       time.Duration `env:"SWEEPER_INTERVAL" default:"1m"`
		NegotiationTTL time.Duration `env:"SWEEPER_NEGOTIATION_TTL" default:"0s"`
		BatchSize      int           `env:"SWEEPER_BATCH_SIZE" default:"100"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// Port returns the HTTP port of the configured mode.
func (c Config) Port() string {
	if c.Mode == types.LocationIngestService {
		return c.Services.LocationIngest
	}
	return c.Services.Matching
}

// HelpRequested reports whether -help was passed. Call after flag.Parse.
func HelpRequested() bool {
	return helpFlag != nil && *helpFlag
}

// ConfigPath returns the -config-path value. Call after flag.Parse.
func ConfigPath() string {
	return *configPathFlag
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case types.MatchingService, types.LocationIngestService:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	switch c.Storage.Driver {
	case types.StoragePostgres, types.StorageMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorage, c.Storage.Driver)
	}

	// the ingest consumer shares positions with the matching service through the database
	if c.Mode == types.LocationIngestService && c.Storage.Driver == types.StorageMemory {
		return fmt.Errorf("%w: location-ingest requires the postgres storage driver", ErrInvalidStorage)
	}

	return nil
}
