package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Index backends.
const (
	BackendAzure  = "azure"
	BackendQdrant = "qdrant"
)

// Archive storage types.
const (
	ArchiveS3           = "s3"
	ArchiveR2           = "r2"
	ArchiveS3Compatible = "s3compatible"
	ArchiveAzureBlob    = "azblob"
)

type Config struct {
	Index    IndexConfig    `mapstructure:"index"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Database DatabaseConfig `mapstructure:"database"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Server   ServerConfig   `mapstructure:"server"`
}

type IndexConfig struct {
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
	Azure   AzureConfig   `mapstructure:"azure"`
	Qdrant  QdrantConfig  `mapstructure:"qdrant"`
}

type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	IndexName  string `mapstructure:"index_name"`
	APIVersion string `mapstructure:"api_version"`
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

type ClassifyConfig struct {
	BatchSize          int    `mapstructure:"batch_size"`
	SampleSize         int    `mapstructure:"sample_size"`
	RulesFile          string `mapstructure:"rules_file"`
	CategoryFacetCount int    `mapstructure:"category_facet_count"`
	AccessFacetCount   int    `mapstructure:"access_facet_count"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // sqlite or postgres
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ArchiveConfig configures where run summaries are uploaded.
// S3-family types use endpoint/credentials/bucket; azblob uses the
// connection string and container.
type ArchiveConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Type             string `mapstructure:"type"`
	Endpoint         string `mapstructure:"endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	PublicURL        string `mapstructure:"public_url"`
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
	Prefix           string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// Load reads configuration from an optional YAML file, the environment, and
// a .env file in the working directory.
// Parameters:
//   - configPath: explicit config file path; empty searches ./configs and ".".
// Returns:
//   - *Config: loaded configuration.
//   - error: non-nil if the file exists but cannot be read or decoded.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("index.azure.endpoint", "AZURE_SEARCH_ENDPOINT")
	v.BindEnv("index.azure.api_key", "AZURE_SEARCH_API_KEY")
	v.BindEnv("index.azure.index_name", "AZURE_SEARCH_INDEX")
	v.BindEnv("index.qdrant.host", "QDRANT_HOST")
	v.BindEnv("index.qdrant.port", "QDRANT_PORT")
	v.BindEnv("index.qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("archive.connection_string", "AZURE_STORAGE_CONNECTION_STRING")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("index.backend", BackendAzure)
	v.SetDefault("index.timeout", 30*time.Second)
	v.SetDefault("index.azure.endpoint", "https://psmai.search.windows.net")
	v.SetDefault("index.azure.index_name", "sharepoint-docs")
	v.SetDefault("index.azure.api_version", "2024-05-01-preview")
	v.SetDefault("index.qdrant.host", "localhost")
	v.SetDefault("index.qdrant.port", 6334)
	v.SetDefault("index.qdrant.collection", "sharepoint-docs")
	v.SetDefault("index.qdrant.use_tls", false)

	v.SetDefault("classify.batch_size", 100)
	v.SetDefault("classify.sample_size", 10)
	v.SetDefault("classify.rules_file", "")
	v.SetDefault("classify.category_facet_count", 50)
	v.SetDefault("classify.access_facet_count", 10)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/docclass.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.type", ArchiveS3Compatible)
	v.SetDefault("archive.use_ssl", true)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "docclass-runs")
	v.SetDefault("archive.container", "docclass-runs")
	v.SetDefault("archive.prefix", "runs")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
}

// Validate reports configuration that would make every run fail.
func (c *Config) Validate() error {
	var errs []error

	if c.Classify.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("classify.batch_size must be positive, got %d", c.Classify.BatchSize))
	}
	if c.Classify.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("classify.sample_size must not be negative, got %d", c.Classify.SampleSize))
	}

	switch c.Index.Backend {
	case BackendAzure:
		if c.Index.Azure.Endpoint == "" {
			errs = append(errs, errors.New("index.azure.endpoint is required"))
		}
		if c.Index.Azure.APIKey == "" {
			errs = append(errs, errors.New("index.azure.api_key is required (set AZURE_SEARCH_API_KEY)"))
		}
		if c.Index.Azure.IndexName == "" {
			errs = append(errs, errors.New("index.azure.index_name is required"))
		}
	case BackendQdrant:
		if c.Index.Qdrant.Collection == "" {
			errs = append(errs, errors.New("index.qdrant.collection is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown index.backend %q", c.Index.Backend))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case ArchiveS3, ArchiveR2, ArchiveS3Compatible, ArchiveAzureBlob:
		default:
			errs = append(errs, fmt.Errorf("unknown archive.type %q", c.Archive.Type))
		}
	}

	for _, origin := range c.Server.CORS.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("server.cors.allowed_origins: %q must be \"*\" or an http(s) origin", origin))
		}
	}

	return errors.Join(errs...)
}
