package storage

import (
	"fmt"
	"strings"

	"github.com/timmy/docclass/internal/config"
)

// NewStorage creates an ObjectStorage instance based on the archive configuration.
// Parameters:
//   - cfg: archive configuration including type, endpoint, and credentials.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *config.ArchiveConfig) (ObjectStorage, error) {
	storeType := StorageType(cfg.Type)
	if storeType == "" {
		storeType = detectStorageType(cfg.Endpoint)
	}

	switch storeType {
	case StorageTypeAzureBlob:
		return NewAzureBlobStorage(&AzureBlobConfig{
			ConnectionString: cfg.ConnectionString,
			Container:        cfg.Container,
		})
	case StorageTypeS3, StorageTypeR2, StorageTypeS3Compatible:
		return NewS3Storage(&S3Config{
			Type:      storeType,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			PublicURL: cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// detectStorageType infers the storage type from the endpoint host.
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	case strings.Contains(endpoint, "blob.core.windows.net"):
		return StorageTypeAzureBlob
	default:
		return StorageTypeS3Compatible
	}
}
