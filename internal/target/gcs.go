package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gcsstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcsTarget struct {
	client     *gcsstorage.Client
	bucket     string
	prefix     string
	kmsKeyName string
	name       string
}

// newGCSTarget uses Application Default Credentials.
func newGCSTarget(ctx context.Context, cfg Config) (Target, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := gcsstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	return &gcsTarget{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     normalizePrefix(cfg.Prefix),
		kmsKeyName: cfg.KMSKeyName,
		name:       cfg.Name,
	}, nil
}

func (t *gcsTarget) Name() string { return t.name }

func (t *gcsTarget) object(key string) *gcsstorage.ObjectHandle {
	return t.client.Bucket(t.bucket).Object(t.prefix + key)
}

func (t *gcsTarget) Put(ctx context.Context, key string, body []byte, contentType string) error {
	w := t.object(key).If(gcsstorage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	if t.kmsKeyName != "" {
		w.KMSKeyName = t.kmsKeyName
	}

	if _, err := w.Write(body); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrExists
		}
		return fmt.Errorf("gcs close writer %q: %w", key, err)
	}
	return nil
}

func (t *gcsTarget) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := t.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcsstorage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gcs NewReader %q: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs reading %q: %w", key, err)
	}
	return data, nil
}

func (t *gcsTarget) List(ctx context.Context, prefix string) ([]Object, error) {
	it := t.client.Bucket(t.bucket).Objects(ctx, &gcsstorage.Query{
		Prefix: t.prefix + prefix,
	})

	var objects []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs List prefix %q: %w", prefix, err)
		}
		objects = append(objects, Object{
			Key:      strings.TrimPrefix(attrs.Name, t.prefix),
			Size:     attrs.Size,
			Modified: attrs.Updated,
		})
	}
	return objects, nil
}
