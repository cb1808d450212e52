// Package config holds the process configuration read from HOMEERP_* variables.
package config

import (
	"fmt"
	"time"

	"homeerp/internal/blob"
)

// Config is the full runtime configuration of the service.
type Config struct {
	HTTPAddr        string        `env:"HOMEERP_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HOMEERP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsEnabled  bool          `env:"HOMEERP_METRICS_ENABLED" envDefault:"true"`

	Storage Storage
	Blob    Blob
	Log     Log
}

// Storage selects the record store backend.
type Storage struct {
	Driver      string `env:"HOMEERP_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"HOMEERP_SQLITE_PATH" envDefault:"homeerp.db"`
	PostgresDSN string `env:"HOMEERP_POSTGRES_DSN"`
}

// Blob selects where exports are written.
type Blob struct {
	Driver            string `env:"HOMEERP_BLOB_DRIVER" envDefault:"fs"`
	FSRoot            string `env:"HOMEERP_BLOB_FS_ROOT" envDefault:"./blobdata"`
	S3Bucket          string `env:"HOMEERP_BLOB_S3_BUCKET"`
	S3Region          string `env:"HOMEERP_BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"HOMEERP_BLOB_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"HOMEERP_BLOB_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"HOMEERP_BLOB_S3_SECRET_ACCESS_KEY"`
	S3PathStyle       bool   `env:"HOMEERP_BLOB_S3_PATH_STYLE" envDefault:"false"`
}

// Log controls the slog handler.
type Log struct {
	Level  string `env:"HOMEERP_LOG_LEVEL" envDefault:"info"`
	Format string `env:"HOMEERP_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config and validates enumerated values.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown drivers and formats.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("config: HOMEERP_BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("config: unknown blob driver %q", c.Blob.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown timeout must be positive")
	}
	return nil
}

// BlobConfig converts the blob section for blob.Open.
func (c Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver:            blob.Driver(c.Blob.Driver),
		FSRoot:            c.Blob.FSRoot,
		S3Bucket:          c.Blob.S3Bucket,
		S3Region:          c.Blob.S3Region,
		S3Endpoint:        c.Blob.S3Endpoint,
		S3AccessKeyID:     c.Blob.S3AccessKeyID,
		S3SecretAccessKey: c.Blob.S3SecretAccessKey,
		S3PathStyle:       c.Blob.S3PathStyle,
	}
}
