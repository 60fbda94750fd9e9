package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBlobConfig holds configuration for Azure Blob Storage
type AzureBlobConfig struct {
	ConnectionString string
	Container        string
}

// AzureBlobStorage implements ObjectStorage on one Azure Blob container.
type AzureBlobStorage struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobStorage parses the connection string and creates the client.
// No request is made until the first operation.
func NewAzureBlobStorage(cfg *AzureBlobConfig) (*AzureBlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &AzureBlobStorage{client: client, container: cfg.Container}, nil
}

// EnsureBucket creates the container if it doesn't exist
func (a *AzureBlobStorage) EnsureBucket(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", a.container, err)
	}
	return nil
}

// Upload streams reader to a block blob. size is unused; the SDK chunks the stream.
func (a *AzureBlobStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}
	if _, err := a.client.UploadStream(ctx, a.container, key, reader, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

// GetURL returns the blob URL under the account's service endpoint.
func (a *AzureBlobStorage) GetURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(a.client.URL(), "/"), a.container, key)
}
