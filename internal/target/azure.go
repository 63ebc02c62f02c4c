package target

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

type azureTarget struct {
	client          *azblob.Client
	container       string
	prefix          string
	encryptionScope string
	name            string
}

func newAzureTarget(cfg Config) (Target, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}

	serviceURL := cfg.Endpoint
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.StorageAccount)
	}
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure blob client: %w", err)
	}

	return &azureTarget{
		client:          client,
		container:       cfg.Container,
		prefix:          normalizePrefix(cfg.Prefix),
		encryptionScope: cfg.EncryptionScope,
		name:            cfg.Name,
	}, nil
}

func (t *azureTarget) Name() string { return t.name }

func (t *azureTarget) Put(ctx context.Context, key string, body []byte, contentType string) error {
	anyTag := azcore.ETagAny
	opts := &azblob.UploadBufferOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: &anyTag},
		},
	}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}
	if t.encryptionScope != "" {
		opts.CPKScopeInfo = &blob.CPKScopeInfo{EncryptionScope: &t.encryptionScope}
	}

	if _, err := t.client.UploadBuffer(ctx, t.container, t.prefix+key, body, opts); err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return ErrExists
		}
		return fmt.Errorf("azure UploadBuffer %q: %w", key, err)
	}
	return nil
}

func (t *azureTarget) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.client.DownloadStream(ctx, t.container, t.prefix+key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("azure DownloadStream %q: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure reading %q: %w", key, err)
	}
	return data, nil
}

func (t *azureTarget) List(ctx context.Context, prefix string) ([]Object, error) {
	full := t.prefix + prefix
	pager := t.client.NewListBlobsFlatPager(t.container, &container.ListBlobsFlatOptions{
		Prefix: &full,
	})

	var objects []Object
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("azure ListBlobsFlat prefix %q: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			obj := Object{Key: strings.TrimPrefix(*item.Name, t.prefix)}
			if p := item.Properties; p != nil {
				if p.ContentLength != nil {
					obj.Size = *p.ContentLength
				}
				if p.LastModified != nil {
					obj.Modified = *p.LastModified
				}
			}
			objects = append(objects, obj)
		}
	}
	return objects, nil
}
