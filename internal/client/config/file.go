package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/rackaudit/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Zero values
// leave the corresponding Config field untouched.
type FileConfig struct {
	LocalDBPath         string         `json:"local_db_path" yaml:"local_db_path" toml:"local_db_path"`
	DatabaseDSN         string         `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	ObjectStore         string         `json:"object_store" yaml:"object_store" toml:"object_store"`
	S3                  S3Config       `json:"s3" yaml:"s3" toml:"s3"`
	GCS                 GCSConfig      `json:"gcs" yaml:"gcs" toml:"gcs"`
	PublicBaseURL       string         `json:"public_base_url" yaml:"public_base_url" toml:"public_base_url"`
	PhotoPathPrefix     string         `json:"photo_path_prefix" yaml:"photo_path_prefix" toml:"photo_path_prefix"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval" toml:"online_check_interval"`
	OnlineSignalFile    string         `json:"online_signal_file" yaml:"online_signal_file" toml:"online_signal_file"`
	EntryTimeout        timex.Duration `json:"entry_timeout" yaml:"entry_timeout" toml:"entry_timeout"`
	UploadRetries       *uint64        `json:"upload_retries" yaml:"upload_retries" toml:"upload_retries"`
	LogLevel            string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile             string         `json:"log_file" yaml:"log_file" toml:"log_file"`
}

func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return json.Unmarshal(data, fc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(fc)
	case ".toml":
		_, err := toml.Decode(string(data), fc)
		return err
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

// parseFile overlays cfg with the non-zero values found in path.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := decodeFile(path, data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	set(&cfg.LocalDBPath, fc.LocalDBPath)
	set(&cfg.DatabaseDSN, fc.DatabaseDSN)
	set(&cfg.ObjectStoreBackend, fc.ObjectStore)
	set(&cfg.S3.AccessKey, fc.S3.AccessKey)
	set(&cfg.S3.SecretKey, fc.S3.SecretKey)
	set(&cfg.S3.Bucket, fc.S3.Bucket)
	set(&cfg.S3.Region, fc.S3.Region)
	set(&cfg.S3.BaseEndpoint, fc.S3.BaseEndpoint)
	set(&cfg.GCS.Bucket, fc.GCS.Bucket)
	set(&cfg.GCS.CredentialsFile, fc.GCS.CredentialsFile)
	set(&cfg.PublicBaseURL, fc.PublicBaseURL)
	set(&cfg.PhotoPathPrefix, fc.PhotoPathPrefix)
	set(&cfg.OnlineSignalFile, fc.OnlineSignalFile)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFile, fc.LogFile)
	setDur(&cfg.OnlineCheckInterval, fc.OnlineCheckInterval)
	setDur(&cfg.EntryTimeout, fc.EntryTimeout)
	if fc.UploadRetries != nil {
		cfg.UploadRetries = *fc.UploadRetries
	}
	return nil
}
