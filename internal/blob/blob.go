// Package blob is the entry point for export storage. Callers depend on the
// Store interface; concrete drivers live under internal/infra/blob.
package blob

import (
	"context"
	"fmt"

	"homeerp/internal/blob/core"
	fsstore "homeerp/internal/infra/blob/fs"
	memstore "homeerp/internal/infra/blob/memory"
	s3store "homeerp/internal/infra/blob/s3"
)

type (
	Store            = core.Store
	Info             = core.Info
	Driver           = core.Driver
	PutOptions       = core.PutOptions
	SignedURLOptions = core.SignedURLOptions
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported = core.ErrUnsupported
	ErrNotFound    = core.ErrNotFound
	ErrExists      = core.ErrExists
)

// Config selects and parameterizes a blob driver.
type Config struct {
	Driver   Driver
	FSRoot   string
	S3Bucket string
	S3Region string
	// S3Endpoint points at MinIO or another S3-compatible server.
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PathStyle       bool
}

// Open returns the Store for cfg.Driver, defaulting to the filesystem driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fsstore.New(cfg.FSRoot)
	case DriverS3:
		return s3store.New(ctx, s3store.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PathStyle:       cfg.S3PathStyle,
		})
	case DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store { return memstore.New() }

// NewS3Fake returns an S3 Store backed by an in-process fake bucket.
func NewS3Fake() Store { return s3store.NewFake() }
