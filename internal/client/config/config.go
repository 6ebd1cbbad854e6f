package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/flagx"
)

const (
	BackendS3  = "s3"
	BackendGCS = "gcs"
)

type S3Config struct {
	AccessKey    string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey    string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	Bucket       string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Region       string `json:"region" yaml:"region" toml:"region"`
	BaseEndpoint string `json:"base_endpoint" yaml:"base_endpoint" toml:"base_endpoint"`
}

type GCSConfig struct {
	Bucket          string `json:"bucket" yaml:"bucket" toml:"bucket"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file" toml:"credentials_file"`
}

// Config holds runtime settings for the field client.
type Config struct {
	LocalDBPath string
	DatabaseDSN string

	ObjectStoreBackend string
	S3                 S3Config
	GCS                GCSConfig
	// PublicBaseURL, when set, prefixes object paths to form photo URLs.
	PublicBaseURL   string
	PhotoPathPrefix string

	OnlineCheckInterval time.Duration
	// OnlineSignalFile switches connectivity detection from pinging the
	// database to watching this file.
	OnlineSignalFile string

	EntryTimeout  time.Duration
	UploadRetries uint64

	LogLevel string
	LogFile  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "rackaudit.db"
	c.ObjectStoreBackend = BackendS3
	c.S3 = S3Config{Bucket: "audit-photos", Region: "us-east-1"}
	c.GCS = GCSConfig{Bucket: "audit-photos"}
	c.PhotoPathPrefix = "damage-photos"
	c.OnlineCheckInterval = 3 * time.Second
	c.EntryTimeout = 30 * time.Second
	c.UploadRetries = 3
	c.LogLevel = "info"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.ObjectStoreBackend {
	case BackendS3, BackendGCS:
	default:
		return fmt.Errorf("unknown object store %q (want s3 or gcs)", c.ObjectStoreBackend)
	}
	if c.LocalDBPath == "" {
		return fmt.Errorf("local db path must not be empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	if c.EntryTimeout < 0 {
		return fmt.Errorf("entry timeout must not be negative")
	}
	return nil
}

// LoadConfig builds a Config from defaults, the environment, an optional
// config file and os.Args, in that order.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

// Load is LoadConfig with explicit arguments and environment lookup.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(flagx.EnvFileFlag(args)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if path := flagx.ConfigFileFlag(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
