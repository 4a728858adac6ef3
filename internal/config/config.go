// Package config loads lanting settings from a YAML file and the environment.
//
// The file format is a superset of the legacy secrets.json layout, so that
// file can be passed directly:
//
//	{"oss": {"accessKeyId": "...", "accessKeySecret": "..."}}
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OSS holds the object storage settings for listing origs.
type OSS struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	MaxKeys         int    `yaml:"maxKeys"`
	AccessKeyID     string `yaml:"accessKeyId"`
	AccessKeySecret string `yaml:"accessKeySecret"`
}

// Config is the full run configuration.
type Config struct {
	ArchiveDir  string `yaml:"archiveDir"`
	CommentsDir string `yaml:"comments"`
	Output      string `yaml:"output"`
	OrigsDir    string `yaml:"origsDir"`
	DB          string `yaml:"db"`
	MaxFileSize int64  `yaml:"maxFileSize"`
	OSS         OSS    `yaml:"oss"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ArchiveDir:  "archives",
		MaxFileSize: 1_000_000,
		OSS: OSS{
			Region:  "oss-cn-beijing",
			Bucket:  "lanting-public",
			Prefix:  "archives/origs/",
			MaxKeys: 1000,
		},
	}
}

// Load returns the defaults overlaid with the file at path (if path is not
// empty) and then with LANTING_* environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ArchiveDir = getenv("LANTING_ARCHIVE_DIR", cfg.ArchiveDir)
	cfg.CommentsDir = getenv("LANTING_COMMENTS_DIR", cfg.CommentsDir)
	cfg.Output = getenv("LANTING_OUTPUT", cfg.Output)
	cfg.OrigsDir = getenv("LANTING_ORIGS_DIR", cfg.OrigsDir)
	cfg.DB = getenv("LANTING_DB", cfg.DB)
	cfg.MaxFileSize = int64(getenvInt("LANTING_MAX_FILE_SIZE", int(cfg.MaxFileSize)))
	cfg.OSS.Region = getenv("LANTING_OSS_REGION", cfg.OSS.Region)
	cfg.OSS.Endpoint = getenv("LANTING_OSS_ENDPOINT", cfg.OSS.Endpoint)
	cfg.OSS.Bucket = getenv("LANTING_OSS_BUCKET", cfg.OSS.Bucket)
	cfg.OSS.Prefix = getenv("LANTING_OSS_PREFIX", cfg.OSS.Prefix)
	cfg.OSS.MaxKeys = getenvInt("LANTING_OSS_MAX_KEYS", cfg.OSS.MaxKeys)
	cfg.OSS.AccessKeyID = getenv("LANTING_OSS_ACCESS_KEY_ID", cfg.OSS.AccessKeyID)
	cfg.OSS.AccessKeySecret = getenv("LANTING_OSS_ACCESS_KEY_SECRET", cfg.OSS.AccessKeySecret)
}

// Comments returns the comment record directory.
func (c Config) Comments() string {
	if c.CommentsDir != "" {
		return c.CommentsDir
	}
	return filepath.Join(c.ArchiveDir, "comments")
}

// OutputPath returns where the compiled JSON is written.
func (c Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.ArchiveDir, "archives.json")
}

// EndpointURL returns the OSS endpoint, derived from the region when unset.
func (o OSS) EndpointURL() string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	return "https://" + o.Region + ".aliyuncs.com"
}

// Validate checks that the settings needed to list origs are present.
func (c Config) Validate() error {
	if c.OrigsDir != "" {
		return nil
	}
	if c.OSS.Bucket == "" {
		return fmt.Errorf("oss.bucket is required when origsDir is not set")
	}
	if c.OSS.AccessKeyID == "" || c.OSS.AccessKeySecret == "" {
		return fmt.Errorf("oss credentials are required when origsDir is not set")
	}
	return nil
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
