package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "RACKAUDIT_"

// loadDotEnv seeds the process environment from path, or from ./.env when
// path is empty. Only an explicitly named file is required to exist.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

// parseEnv overlays cfg with RACKAUDIT_* variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("LOCAL_DB", &cfg.LocalDBPath)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("OBJECT_STORE", &cfg.ObjectStoreBackend)
	str("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	str("S3_SECRET_KEY", &cfg.S3.SecretKey)
	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_ENDPOINT", &cfg.S3.BaseEndpoint)
	str("GCS_BUCKET", &cfg.GCS.Bucket)
	str("GCS_CREDENTIALS_FILE", &cfg.GCS.CredentialsFile)
	str("PUBLIC_BASE_URL", &cfg.PublicBaseURL)
	str("PHOTO_PATH_PREFIX", &cfg.PhotoPathPrefix)
	str("ONLINE_SIGNAL_FILE", &cfg.OnlineSignalFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)

	for name, dst := range map[string]*time.Duration{
		"ONLINE_CHECK_INTERVAL": &cfg.OnlineCheckInterval,
		"ENTRY_TIMEOUT":         &cfg.EntryTimeout,
	} {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(envPrefix + "UPLOAD_RETRIES"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sUPLOAD_RETRIES: %w", envPrefix, err)
		}
		cfg.UploadRetries = n
	}
	return nil
}
