// Package config handles tmxtool configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/tilemap/pkg/tmx"
)

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Encode  EncodeConfig  `yaml:"encode"`
	Watch   WatchConfig   `yaml:"watch"`
	Grid    GridConfig    `yaml:"grid"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// EncodeConfig holds the layer data format written by the encode command.
type EncodeConfig struct {
	Encoding    string `yaml:"encoding"`    // xml, csv or base64
	Compression string `yaml:"compression"` // none, zlib, gzip or zstd
	Level       int    `yaml:"level"`       // -1 lets the codec choose
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	Extensions []string      `yaml:"extensions"`
}

// GridConfig holds coordinate output settings.
type GridConfig struct {
	Precision int `yaml:"precision"` // digits after the decimal point
}

// AssetsConfig lists extra roots searched for maps and their references.
// Later roots win. Each root is a directory or a zip pack.
type AssetsConfig struct {
	Roots []string `yaml:"roots"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Encode: EncodeConfig{
			Encoding:    "base64",
			Compression: "zlib",
			Level:       tmx.DefaultCompressionLevel,
		},
		Watch: WatchConfig{
			Debounce:   200 * time.Millisecond,
			Extensions: []string{".tmx", ".tsx", ".tx"},
		},
		Grid: GridConfig{
			Precision: 3,
		},
	}
}

// EncodeOptions converts the encode section into codec options.
func (c *Config) EncodeOptions() (tmx.EncodeOptions, error) {
	enc, err := tmx.ParseEncoding(c.Encode.Encoding)
	if err != nil {
		return tmx.EncodeOptions{}, fmt.Errorf("encode.encoding: %w", err)
	}
	name := c.Encode.Compression
	if name == "none" {
		name = ""
	}
	comp, err := tmx.ParseCompression(name)
	if err != nil {
		return tmx.EncodeOptions{}, fmt.Errorf("encode.compression: %w", err)
	}
	if comp != tmx.CompressionNone && enc != tmx.EncodingBase64 {
		return tmx.EncodeOptions{}, fmt.Errorf("encode.compression %q requires base64 encoding", c.Encode.Compression)
	}
	return tmx.EncodeOptions{Encoding: enc, Compression: comp, Level: c.Encode.Level}, nil
}

// Validate checks values that cannot be fixed by falling back to defaults.
func (c *Config) Validate() error {
	if _, err := c.EncodeOptions(); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Grid.Precision < 0 || c.Grid.Precision > 12 {
		return fmt.Errorf("grid.precision must be between 0 and 12, got %d", c.Grid.Precision)
	}
	for i, root := range c.Assets.Roots {
		if root == "" {
			return fmt.Errorf("assets.roots[%d] is empty", i)
		}
	}
	return nil
}
