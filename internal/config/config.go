package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN            string        `env:"DATABASE_DSN,required=true"`
	RedisURL               string        `env:"REDIS_URL,required=true"`
	AuthJWTSecret          string        `env:"AUTH_JWT_SECRET,required=true"`
	RabbitMQURL            string        `env:"RABBITMQ_URL"`
	AlertWebhookURL        string        `env:"ALERT_WEBHOOK_URL"`
	MailboxBaseURL         string        `env:"MAILBOX_BASE_URL,default=https://gmail.googleapis.com/"`
	MailboxTimeout         time.Duration `env:"MAILBOX_TIMEOUT,default=15s"`
	MailboxRateLimitPerSec int           `env:"MAILBOX_RATE_LIMIT_PER_SEC,default=20"`
	ScanMaxResults         int           `env:"SCAN_MAX_RESULTS,default=10"`
	ScanLockTTL            time.Duration `env:"SCAN_LOCK_TTL,default=2m"`
	WorkerConcurrency      int           `env:"WORKER_CONCURRENCY,default=2"`
	APIPort                int           `env:"API_PORT,default=8080"`
	LogLevel               string        `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.ScanMaxResults < 1 {
		return nil, fmt.Errorf("failed to load config: SCAN_MAX_RESULTS must be >= 1")
	}
	return &cfg, nil
}

// AlertRelayEnabled reports whether scanned notifications are forwarded to a webhook.
func (c *Config) AlertRelayEnabled() bool {
	return c.RabbitMQURL != "" && c.AlertWebhookURL != ""
}
