// Package config provides configuration management for the leapviz CLI.
//
// This package extends the shared source configuration from internal/config
// with CLI-specific fields: where the row store lives, who owns imported
// datasets, and how results are rendered.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/leapviz/internal/config"
	"github.com/leapstack-labs/leapviz/internal/source"
	"github.com/leapstack-labs/leapviz/pkg/core"
)

// SourceConfig is an alias for the shared SQL source configuration.
// This allows CLI code to use config.SourceConfig without importing internal/config.
type SourceConfig = sharedcfg.SourceConfig

// Config holds all CLI configuration options.
type Config struct {
	StatePath       string                   `koanf:"state_path"`
	Owner           string                   `koanf:"owner"`
	Verbose         bool                     `koanf:"verbose"`
	OutputFormat    string                   `koanf:"output"`
	LogLevel        string                   `koanf:"log_level"`
	LogFormat       string                   `koanf:"log_format"`
	BatchSize       int                      `koanf:"batch_size"`
	SampleSize      int                      `koanf:"sample_size"`
	DefaultPageSize int                      `koanf:"default_page_size"`
	MetricsTextfile string                   `koanf:"metrics_textfile"`
	Sources         map[string]*SourceConfig `koanf:"sources"`
	ObjectStore     *ObjectStoreConfig       `koanf:"object_store"`
	REST            RESTConfig               `koanf:"rest"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when none was found. Not loaded from configuration.
	ProjectRoot string `koanf:"-"`
}

// ObjectStoreConfig holds S3-compatible settings for s3:// import locations.
type ObjectStoreConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	Region    string `koanf:"region"`
}

// Source converts the settings into the reader's connection config.
func (o *ObjectStoreConfig) Source() source.ObjectStoreConfig {
	return source.ObjectStoreConfig{
		Endpoint:  o.Endpoint,
		AccessKey: o.AccessKey,
		SecretKey: o.SecretKey,
		UseSSL:    o.UseSSL,
		Region:    o.Region,
	}
}

// RESTConfig holds defaults applied to REST imports.
type RESTConfig struct {
	TimeoutSeconds int `koanf:"timeout_seconds"`
	MaxRecords     int `koanf:"max_records"`
}

// Timeout returns the HTTP client timeout.
func (r RESTConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Source returns the named SQL source, or nil.
func (c *Config) Source(name string) *SourceConfig {
	if c.Sources == nil {
		return nil
	}
	return c.Sources[name]
}

// Default configuration values
const (
	DefaultStateFile  = ".leapviz/state.db"
	DefaultOwner      = "local"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultSampleSize = 100
	DefaultBatchSize  = 1000
)

// Config file names searched for in the working directory, in order.
var configFileNames = []string{"leapviz.yaml", "leapviz.yml"}

// defaults seeds the koanf instance before any other layer.
func defaults() map[string]interface{} {
	rest := core.DefaultRestImportOptions()
	return map[string]interface{}{
		"state_path":           DefaultStateFile,
		"owner":                DefaultOwner,
		"verbose":              false,
		"output":               DefaultOutput,
		"log_level":            DefaultLogLevel,
		"log_format":           DefaultLogFormat,
		"batch_size":           DefaultBatchSize,
		"sample_size":          DefaultSampleSize,
		"default_page_size":    core.DefaultPageSize,
		"rest.timeout_seconds": rest.TimeoutSeconds,
		"rest.max_records":     rest.MaxRecords,
	}
}
