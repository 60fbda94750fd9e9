package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port: got %d", cfg.Server.Port)
	}
	if cfg.Index.Backend != BackendAzure {
		t.Errorf("index.backend: got %q", cfg.Index.Backend)
	}
	if cfg.Index.Timeout != 30*time.Second {
		t.Errorf("index.timeout: got %v", cfg.Index.Timeout)
	}
	if cfg.Index.Azure.IndexName != "sharepoint-docs" || cfg.Index.Azure.APIVersion != "2024-05-01-preview" {
		t.Errorf("azure defaults: %+v", cfg.Index.Azure)
	}
	if cfg.Classify.BatchSize != 100 || cfg.Classify.SampleSize != 10 {
		t.Errorf("classify defaults: %+v", cfg.Classify)
	}
	if cfg.Classify.CategoryFacetCount != 50 || cfg.Classify.AccessFacetCount != 10 {
		t.Errorf("facet defaults: %+v", cfg.Classify)
	}
	if cfg.Database.Enabled || cfg.Archive.Enabled {
		t.Error("ledger and archive should be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AZURE_SEARCH_API_KEY", "secret-key")
	t.Setenv("AZURE_SEARCH_INDEX", "other-index")
	t.Setenv("CLASSIFY_BATCH_SIZE", "25")

	cfg, err := Load(writeConfig(t, "classify:\n  sample_size: 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.Azure.APIKey != "secret-key" {
		t.Errorf("api key: got %q", cfg.Index.Azure.APIKey)
	}
	if cfg.Index.Azure.IndexName != "other-index" {
		t.Errorf("index name: got %q", cfg.Index.Azure.IndexName)
	}
	if cfg.Classify.BatchSize != 25 {
		t.Errorf("batch size: got %d", cfg.Classify.BatchSize)
	}
	if cfg.Classify.SampleSize != 3 {
		t.Errorf("sample size: got %d", cfg.Classify.SampleSize)
	}
}

func TestLoad_BadFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "index: [unclosed\n")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Index: IndexConfig{
				Backend: BackendAzure,
				Azure:   AzureConfig{Endpoint: "https://x.search.windows.net", APIKey: "k", IndexName: "docs"},
			},
			Classify: ClassifyConfig{BatchSize: 100, SampleSize: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero batch", mutate: func(c *Config) { c.Classify.BatchSize = 0 }, wantErr: "batch_size"},
		{name: "missing key", mutate: func(c *Config) { c.Index.Azure.APIKey = "" }, wantErr: "api_key"},
		{name: "unknown backend", mutate: func(c *Config) { c.Index.Backend = "solr" }, wantErr: "index.backend"},
		{
			name: "qdrant needs no azure key",
			mutate: func(c *Config) {
				c.Index.Backend = BackendQdrant
				c.Index.Azure = AzureConfig{}
				c.Index.Qdrant.Collection = "docs"
			},
		},
		{
			name: "unknown archive type",
			mutate: func(c *Config) {
				c.Archive.Enabled = true
				c.Archive.Type = "ftp"
			},
			wantErr: "archive.type",
		},
		{
			name:    "cors origin without scheme",
			mutate:  func(c *Config) { c.Server.CORS.AllowedOrigins = []string{"example.com"} },
			wantErr: "allowed_origins",
		},
		{
			name:   "cors wildcard",
			mutate: func(c *Config) { c.Server.CORS.AllowedOrigins = []string{"*", "https://a.example"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
