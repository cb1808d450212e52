package config

import (
	"strings"
	"testing"
	"time"

	"homeerp/internal/blob"
)

type envTestConfig struct {
	Port int `env:"HOMEERP_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("HOMEERP_TEST_PORT", "not-an-int")
	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "homeerp.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Blob.Driver != "fs" || cfg.Blob.FSRoot != "./blobdata" || cfg.Blob.S3Region != "us-east-1" {
		t.Fatalf("unexpected blob defaults: %+v", cfg.Blob)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" || !cfg.MetricsEnabled {
		t.Fatalf("unexpected log/metrics defaults: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.ShutdownTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOMEERP_STORAGE_DRIVER", "postgres")
	t.Setenv("HOMEERP_POSTGRES_DSN", "postgres://db/homeerp")
	t.Setenv("HOMEERP_BLOB_DRIVER", "s3")
	t.Setenv("HOMEERP_BLOB_S3_BUCKET", "exports")
	t.Setenv("HOMEERP_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("HOMEERP_LOG_FORMAT", "json")
	t.Setenv("HOMEERP_SHUTDOWN_TIMEOUT", "3s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.PostgresDSN != "postgres://db/homeerp" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	bc := cfg.BlobConfig()
	if bc.Driver != blob.DriverS3 || bc.S3Bucket != "exports" || !bc.S3PathStyle {
		t.Fatalf("unexpected blob config: %+v", bc)
	}
	if cfg.ShutdownTimeout != 3*time.Second || cfg.Log.Format != "json" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"storage": {"HOMEERP_STORAGE_DRIVER": "mongo"},
		"blob":    {"HOMEERP_BLOB_DRIVER": "ftp"},
		"bucket":  {"HOMEERP_BLOB_DRIVER": "s3"},
		"format":  {"HOMEERP_LOG_FORMAT": "xml"},
		"timeout": {"HOMEERP_SHUTDOWN_TIMEOUT": "0s"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", vars)
			}
		})
	}
}
