// Package config defines the application configuration and its loader.
package config

import (
	"fmt"
)

// Config is the full application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	Verbose  bool   `mapstructure:"verbose"`

	// Language is the default OCR language hint (BCP 47, e.g. "de").
	Language string `mapstructure:"language"`

	Gallery GalleryConfig `mapstructure:"gallery"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
}

// GalleryConfig configures the reference-image classifier.
type GalleryConfig struct {
	// Dir holds the reference images and manifest.
	Dir string `mapstructure:"dir"`
	// PriorsPath optionally overrides the embedded priors table.
	PriorsPath string `mapstructure:"priors_path"`
	// ModelPath optionally enables the ONNX embedder.
	ModelPath string `mapstructure:"model_path"`
	// NumThreads limits ONNX intra-op threads (0 = runtime default).
	NumThreads int `mapstructure:"num_threads"`
}

// OCRConfig configures the label-recognition stage.
type OCRConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// FastMaxSide is the downscale bound for the fast pass.
	FastMaxSide int `mapstructure:"fast_max_side"`
}

// StoreConfig configures the barcode nutrition store.
type StoreConfig struct {
	// Path is the sqlite cache location; empty disables the store.
	Path string `mapstructure:"path"`
	// RemoteEnabled turns on the remote product-database fallback.
	RemoteEnabled bool `mapstructure:"remote_enabled"`
	// RemoteBaseURL overrides the public endpoint.
	RemoteBaseURL string `mapstructure:"remote_base_url"`
	// TimeoutSec bounds each remote fetch.
	TimeoutSec int `mapstructure:"timeout_sec"`
	// QueueDepth sizes the fire-and-forget writer queue.
	QueueDepth int `mapstructure:"queue_depth"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Language: "",
		Gallery: GalleryConfig{
			Dir: "gallery",
		},
		OCR: OCRConfig{
			Enabled:     true,
			FastMaxSide: 800,
		},
		Store: StoreConfig{
			Path:          "platescan.db",
			RemoteEnabled: true,
			TimeoutSec:    10,
			QueueDepth:    32,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxUploadMB:     16,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("invalid max_upload_mb %d", c.Server.MaxUploadMB)
	}
	if c.Store.TimeoutSec < 1 {
		return fmt.Errorf("invalid store timeout_sec %d", c.Store.TimeoutSec)
	}
	if c.OCR.FastMaxSide < 64 {
		return fmt.Errorf("invalid ocr fast_max_side %d", c.OCR.FastMaxSide)
	}
	return nil
}
