package config

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/Temutjin2k/campus-ride/pkg/logger"
)

const HelpMessage = `
campus-ride: ride request matching and fare negotiation

Usage:
  campusride -mode=<mode> [-config-path=config.yaml]
  campusride -help

Modes:
  matching          HTTP API, WebSocket push and the expiry sweeper
  location-ingest   Kafka heartbeat consumer

Options:
  -mode           service mode
  -config-path    YAML config file, values may use ${VAR:-default}
  -help           show this message

Every config key can be overridden with its environment variable,
e.g. STORAGE_DRIVER=memory, REDIS_ENABLED=true, KAFKA_BROKERS=a:9092,b:9092.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig logs the effective configuration with secrets masked.
func PrintConfig(ctx context.Context, cfg *Config, log logger.Logger) {
	log.Info(ctx, "configuration loaded",
		"mode", cfg.Mode,
		"storage", cfg.Storage.Driver,
		"database", fmt.Sprintf("%s@%s:%s/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database),
		"database_password", mask(cfg.Database.Password),
		"redis_enabled", cfg.Redis.Enabled,
		"redis_addr", cfg.Redis.Addr,
		"rabbitmq_enabled", cfg.RabbitMQ.Enabled,
		"rabbitmq", fmt.Sprintf("%s@%s:%s", cfg.RabbitMQ.User, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		"kafka_brokers", strings.Join(cfg.Kafka.Brokers, ","),
		"kafka_topic", cfg.Kafka.Topic,
		"locationiq_api_key", mask(cfg.LocationIQ.APIKey),
		"port", cfg.Port(),
		"jwt_secret", mask(cfg.Auth.JWTSecret),
		"access_token_ttl", cfg.Auth.AccessTokenTTL.String(),
		"sweeper_enabled", cfg.Sweeper.Enabled,
		"sweeper_interval", cfg.Sweeper.Interval.String(),
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****"
}
