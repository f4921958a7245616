package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// AppConfig represents the optional TOML configuration. Connection secrets
// come from the environment; this file carries tunables only.
type AppConfig struct {
	Storage StorageConfig `toml:"storage"`
	Jobs    JobsConfig    `toml:"jobs"`
	Queuing QueuingConfig `toml:"queuing"`
	Auth    AuthConfig    `toml:"auth"`
}

// StorageConfig contains object storage bucket names
type StorageConfig struct {
	DocumentBucket    string `toml:"document_bucket"`
	ReceiptBucket     string `toml:"receipt_bucket"`
	MaintenanceBucket string `toml:"maintenance_bucket"`
}

// JobsConfig contains background job cadence settings
type JobsConfig struct {
	OverdueSweepMinutes int `toml:"overdue_sweep_minutes"`
	TokenCleanupHours   int `toml:"token_cleanup_hours"`
}

// QueuingConfig contains asynq worker settings
type QueuingConfig struct {
	Concurrency     int            `toml:"concurrency"`
	QueuePriorities map[string]int `toml:"queue_priorities"`
}

// AuthConfig contains token lifetime settings
type AuthConfig struct {
	AccessTokenTTLSeconds  int `toml:"access_token_ttl_seconds"`
	RefreshTokenTTLSeconds int `toml:"refresh_token_ttl_seconds"`
}

// Default returns the configuration used when no file is present
func Default() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			DocumentBucket:    "rentfolio-documents",
			ReceiptBucket:     "rentfolio-receipts",
			MaintenanceBucket: "rentfolio-maintenance",
		},
		Jobs: JobsConfig{
			OverdueSweepMinutes: 60,
			TokenCleanupHours:   24,
		},
		Queuing: QueuingConfig{
			Concurrency: 10,
			QueuePriorities: map[string]int{
				"default": 1,
			},
		},
		Auth: AuthConfig{
			AccessTokenTTLSeconds:  3600,
			RefreshTokenTTLSeconds: 7 * 24 * 3600,
		},
	}
}

// Load reads the TOML file at path, falling back to defaults for any field
// the file leaves unset. A missing file is not an error.
func Load(path string) (*AppConfig, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if config.Queuing.Concurrency <= 0 {
		config.Queuing.Concurrency = 10
	}
	if config.Auth.AccessTokenTTLSeconds <= 0 {
		config.Auth.AccessTokenTTLSeconds = 3600
	}
	if config.Auth.RefreshTokenTTLSeconds <= 0 {
		config.Auth.RefreshTokenTTLSeconds = 7 * 24 * 3600
	}

	return config, nil
}

// OverdueSweepInterval returns the overdue sweep cadence as a duration
func (c *AppConfig) OverdueSweepInterval() time.Duration {
	if c.Jobs.OverdueSweepMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Jobs.OverdueSweepMinutes) * time.Minute
}

// TokenCleanupInterval returns the token cleanup cadence as a duration
func (c *AppConfig) TokenCleanupInterval() time.Duration {
	if c.Jobs.TokenCleanupHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Jobs.TokenCleanupHours) * time.Hour
}
