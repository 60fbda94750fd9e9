package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/timmy/docclass/internal/config"
)

const testConnectionString = "DefaultEndpointsProtocol=https;AccountName=devacct;AccountKey=a2V5;EndpointSuffix=core.windows.net"

func TestDetectStorageType(t *testing.T) {
	tests := []struct {
		endpoint string
		want     StorageType
	}{
		{endpoint: "https://abc.r2.cloudflarestorage.com", want: StorageTypeR2},
		{endpoint: "s3.us-west-2.amazonaws.com", want: StorageTypeS3},
		{endpoint: "https://devacct.blob.core.windows.net", want: StorageTypeAzureBlob},
		{endpoint: "localhost:9000", want: StorageTypeS3Compatible},
	}
	for _, tt := range tests {
		if got := detectStorageType(tt.endpoint); got != tt.want {
			t.Errorf("detectStorageType(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	if got := normalizeEndpoint("https://minio.local:9000/some/path"); got != "minio.local:9000" {
		t.Errorf("got %q", got)
	}
}

func TestValidateKey(t *testing.T) {
	if !errors.Is(validateKey(""), ErrEmptyKey) {
		t.Error("empty key should be rejected")
	}
	if !errors.Is(validateKey("runs/../secret"), ErrInvalidKey) {
		t.Error("traversal should be rejected")
	}
	if validateKey("runs/2024/01/02/run.json") != nil {
		t.Error("regular key should be accepted")
	}
}

func TestS3Storage_GetURL(t *testing.T) {
	s, err := NewS3Storage(&S3Config{
		Type:     StorageTypeS3Compatible,
		Endpoint: "http://localhost:9000",
		Bucket:   "docclass-runs",
	})
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}
	if got := s.GetURL("runs/a.json"); got != "http://localhost:9000/docclass-runs/runs/a.json" {
		t.Errorf("path-style url: got %q", got)
	}

	s, err = NewS3Storage(&S3Config{
		Type:      StorageTypeR2,
		Endpoint:  "https://abc.r2.cloudflarestorage.com",
		Bucket:    "b",
		UseSSL:    true,
		PublicURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}
	if got := s.GetURL("runs/a.json"); got != "https://cdn.example.com/runs/a.json" {
		t.Errorf("public url: got %q", got)
	}
}

func TestS3Storage_UploadRejectsBadKey(t *testing.T) {
	s, err := NewS3Storage(&S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Upload(context.Background(), "", strings.NewReader("{}"), 2, "application/json"); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
}

func TestNewStorage(t *testing.T) {
	st, err := NewStorage(&config.ArchiveConfig{
		Type:             "azblob",
		ConnectionString: testConnectionString,
		Container:        "runs-container",
	})
	if err != nil {
		t.Fatalf("NewStorage azblob: %v", err)
	}
	if _, ok := st.(*AzureBlobStorage); !ok {
		t.Fatalf("expected *AzureBlobStorage, got %T", st)
	}
	if got := st.GetURL("runs/x.json"); got != "https://devacct.blob.core.windows.net/runs-container/runs/x.json" {
		t.Errorf("blob url: got %q", got)
	}

	st, err = NewStorage(&config.ArchiveConfig{Endpoint: "localhost:9000", Bucket: "b"})
	if err != nil {
		t.Fatalf("NewStorage detected: %v", err)
	}
	if _, ok := st.(*S3Storage); !ok {
		t.Errorf("expected *S3Storage, got %T", st)
	}

	if _, err := NewStorage(&config.ArchiveConfig{Type: "ftp"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
