package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/flagx"
)

var knownFlags = []string{
	"-d", "-dsn", "-store", "-bucket", "-endpoint", "-public-url",
	"-i", "-signal", "-timeout", "-retries", "-log-level", "-log-file",
}

// parseFlags populates Config fields from command-line flags. Arguments it
// does not own (-c, -env, REPL input) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("rackaudit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "path of the local queue database")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "remote Postgres DSN")
	fs.StringVar(&cfg.ObjectStoreBackend, "store", cfg.ObjectStoreBackend, "object store backend (s3|gcs)")
	bucket := fs.String("bucket", "", "photo bucket")
	fs.StringVar(&cfg.S3.BaseEndpoint, "endpoint", cfg.S3.BaseEndpoint, "S3-compatible endpoint URL")
	fs.StringVar(&cfg.PublicBaseURL, "public-url", cfg.PublicBaseURL, "base URL for public photo links")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.OnlineSignalFile, "signal", cfg.OnlineSignalFile, "status file with online/offline")
	timeout := fs.Int("timeout", int(cfg.EntryTimeout.Seconds()), "per-entry sync timeout (in seconds)")
	fs.Uint64Var(&cfg.UploadRetries, "retries", cfg.UploadRetries, "extra upload attempts per entry")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotated log file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only explicit flags override, so sub-second values from files survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
		case "timeout":
			cfg.EntryTimeout = time.Duration(*timeout) * time.Second
		}
	})
	if *bucket != "" {
		if cfg.ObjectStoreBackend == BackendGCS {
			cfg.GCS.Bucket = *bucket
		} else {
			cfg.S3.Bucket = *bucket
		}
	}
	return nil
}
