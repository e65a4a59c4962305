package blobgate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blobgate/blobgate/storage"
)

// Default request limits. The suffix cap is deliberately the smaller of
// the two: suffix ranges make the store seek from the object tail.
const (
	DefaultMaxRangeBytes  = 100 << 20 // 100 MiB
	DefaultMaxSuffixBytes = 10 << 20  // 10 MiB
	DefaultMaxAgeSeconds  = 300
	DefaultNamespace      = "analytics/"
)

// FileConfig is the YAML configuration file surface.
type FileConfig struct {
	Port           int    `yaml:"port"`
	Namespace      string `yaml:"namespace"`
	MaxRangeBytes  int64  `yaml:"maxRangeBytes"`
	MaxSuffixBytes int64  `yaml:"maxSuffixBytes"`
	// AllowedOrigins is a comma-separated origin allow list.
	// Empty means all cross-origin access is denied.
	AllowedOrigins string `yaml:"allowedOrigins"`
	MaxAgeSeconds  int    `yaml:"maxAgeSeconds"`
	Immutable      bool   `yaml:"immutable"`
	// CacheProvider is one of sqlite, redis, memory.
	CacheProvider string `yaml:"cacheProvider"`
	CacheDB       string `yaml:"cacheDb"`
	RedisAddr     string `yaml:"redisAddr"`

	S3 S3FileConfig `yaml:"s3"`
}

// S3FileConfig configures the storage backend. An empty bucket selects
// the in-memory store (local mode).
type S3FileConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"pathStyle"`
}

// S3Config converts the file surface to the storage package's config,
// merging credentials from the environment.
func (c S3FileConfig) S3Config() storage.S3Config {
	return storage.S3Config{
		Bucket:    c.Bucket,
		Region:    c.Region,
		Endpoint:  c.Endpoint,
		PathStyle: c.PathStyle,
		AccessKey: os.Getenv("BLOBGATE_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("BLOBGATE_S3_SECRET_KEY"),
	}
}

// LoadConfig reads a YAML config file and fills in defaults.
func LoadConfig(filename string) (FileConfig, error) {
	var config FileConfig
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", filename, err)
	}
	config.applyDefaults()
	return config, nil
}

func (c *FileConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.MaxRangeBytes == 0 {
		c.MaxRangeBytes = DefaultMaxRangeBytes
	}
	if c.MaxSuffixBytes == 0 {
		c.MaxSuffixBytes = DefaultMaxSuffixBytes
	}
	if c.MaxAgeSeconds == 0 {
		c.MaxAgeSeconds = DefaultMaxAgeSeconds
	}
	if c.CacheProvider == "" {
		c.CacheProvider = "sqlite"
	}
}
