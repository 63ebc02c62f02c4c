// Package target stores run receipts in object storage. Objects are
// write-once: Put refuses to overwrite an existing key.
package target

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("object not found")
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("object already exists")
)

// Object is one entry returned from List.
type Object struct {
	Key      string
	Size     int64
	Modified time.Time
}

// Target is a receipt store.
type Target interface {
	// Put creates key with body. It returns ErrExists if key is present.
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// Get returns the body of key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every object under prefix. Keys are relative to the
	// store's own prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Name identifies the store in logs.
	Name() string
}

// Backend types accepted in Config.Type.
const (
	TypeS3     = "s3"
	TypeAzure  = "azure"
	TypeGCS    = "gcs"
	TypeMemory = "memory"
)

// Config describes one receipt store.
type Config struct {
	Name            string `yaml:"name" env:"NAME"`
	Type            string `yaml:"type" env:"TYPE"`
	Bucket          string `yaml:"bucket" env:"BUCKET"`
	Region          string `yaml:"region" env:"REGION"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
	Prefix          string `yaml:"prefix" env:"PREFIX"`
	StorageAccount  string `yaml:"storage_account" env:"STORAGE_ACCOUNT"`
	Container       string `yaml:"container" env:"CONTAINER"`
	KMSKeyID        string `yaml:"kms_key_id" env:"KMS_KEY_ID"`
	KMSKeyName      string `yaml:"kms_key_name" env:"KMS_KEY_NAME"`
	EncryptionScope string `yaml:"encryption_scope" env:"ENCRYPTION_SCOPE"`
	MaxRetries      int    `yaml:"max_retries" env:"MAX_RETRIES"`
	RetryBackoff    string `yaml:"retry_backoff" env:"RETRY_BACKOFF"`
}

// Validate checks the fields the selected backend needs.
func (c Config) Validate() error {
	switch c.Type {
	case TypeS3, TypeGCS:
		if c.Bucket == "" {
			return fmt.Errorf("target %q: %s store requires a bucket", c.Name, c.Type)
		}
	case TypeAzure:
		if c.StorageAccount == "" && c.Endpoint == "" {
			return fmt.Errorf("target %q: azure store requires storage_account or endpoint", c.Name)
		}
		if c.Container == "" {
			return fmt.Errorf("target %q: azure store requires a container", c.Name)
		}
	case TypeMemory:
	default:
		return fmt.Errorf("target %q: unsupported type %q (must be s3, azure, gcs, or memory)", c.Name, c.Type)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("target %q: max_retries must not be negative", c.Name)
	}
	switch c.RetryBackoff {
	case "", BackoffExponential, BackoffLinear:
	default:
		return fmt.Errorf("target %q: retry_backoff must be %s or %s", c.Name, BackoffExponential, BackoffLinear)
	}
	return nil
}

// normalizePrefix returns p with exactly one trailing slash, or "".
func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
