// Package config loads pdf-tools settings from pdf-tools.yaml, PDF_TOOLS_*
// environment variables and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/Epistemic-Technology/pdf-tools/internal/documents"
	"github.com/Epistemic-Technology/pdf-tools/internal/pdf"
	"github.com/Epistemic-Technology/pdf-tools/internal/validate"
	"github.com/Epistemic-Technology/pdf-tools/internal/workers"
)

// EnvPrefix is prepended to every environment variable viper consults
const EnvPrefix = "PDF_TOOLS"

// Config is the effective configuration
type Config struct {
	Staging   StagingConfig          `mapstructure:"staging" yaml:"staging"`
	Upload    UploadConfig           `mapstructure:"upload" yaml:"upload"`
	Workers   int                    `mapstructure:"workers" yaml:"workers"`
	Fetch     FetchConfig            `mapstructure:"fetch" yaml:"fetch"`
	Compress  CompressConfig         `mapstructure:"compress" yaml:"compress"`
	Watermark pdf.WatermarkOptions   `mapstructure:"watermark" yaml:"watermark"`
	Zotero    documents.ZoteroConfig `mapstructure:"zotero" yaml:"zotero"`
	Log       LogConfig              `mapstructure:"log" yaml:"log"`
}

// StagingConfig locates staged outputs and their catalog
type StagingConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Catalog is the SQLite database path; empty disables the catalog
	Catalog string `mapstructure:"catalog" yaml:"catalog"`
}

// UploadConfig bounds accepted inputs
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
	// MaxMergeInputs caps the number of documents in one merge
	MaxMergeInputs int `mapstructure:"max_merge_inputs" yaml:"max_merge_inputs"`
}

// FetchConfig throttles remote downloads
type FetchConfig struct {
	RatePerSecond float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int           `mapstructure:"burst" yaml:"burst"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CompressConfig holds compress defaults
type CompressConfig struct {
	DefaultTier string `mapstructure:"default_tier" yaml:"default_tier"`
}

// LogConfig mirrors logger.LogConfig
type LogConfig struct {
	Output string `mapstructure:"output" yaml:"output"`
	Level  string `mapstructure:"level" yaml:"level"`
	File   string `mapstructure:"file" yaml:"file"`
}

// homeDir returns ~/.pdf-tools, or .pdf-tools when there is no home directory
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pdf-tools"
	}
	return filepath.Join(home, ".pdf-tools")
}

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	base := homeDir()
	wm := pdf.DefaultWatermarkOptions()

	v.SetDefault("staging.dir", filepath.Join(base, "staging"))
	v.SetDefault("staging.catalog", filepath.Join(base, "staging.db"))
	v.SetDefault("upload.max_bytes", validate.DefaultMaxBytes)
	v.SetDefault("upload.max_merge_inputs", 10)
	v.SetDefault("workers", workers.DefaultMaxWorkers)
	v.SetDefault("fetch.rate_per_second", 2.0)
	v.SetDefault("fetch.burst", 4)
	v.SetDefault("fetch.timeout", "60s")
	v.SetDefault("compress.default_tier", string(pdf.DefaultTier))
	v.SetDefault("watermark.font_size", wm.FontSize)
	v.SetDefault("watermark.opacity", wm.Opacity)
	v.SetDefault("watermark.rotation", wm.Rotation)
	v.SetDefault("watermark.color", wm.Color)
	v.SetDefault("zotero.api_key", "")
	v.SetDefault("zotero.library_id", "")
	v.SetDefault("log.output", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Init points v at the config file and environment. With cfgFile empty it
// looks for pdf-tools.yaml in . and ~/.config/pdf-tools. It returns the
// file used, or "" when none was found.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdf-tools")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pdf-tools"))
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Zotero credentials keep their conventional unprefixed names too
	_ = v.BindEnv("zotero.api_key", EnvPrefix+"_ZOTERO_API_KEY", "ZOTERO_API_KEY")
	_ = v.BindEnv("zotero.library_id", EnvPrefix+"_ZOTERO_LIBRARY_ID", "ZOTERO_LIBRARY_ID")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config and checks it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Staging.Dir = expandHome(cfg.Staging.Dir)
	cfg.Staging.Catalog = expandHome(cfg.Staging.Catalog)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if c.Staging.Dir == "" {
		return fmt.Errorf("staging.dir must be set")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Upload.MaxMergeInputs < 2 {
		return fmt.Errorf("upload.max_merge_inputs must be at least 2, got %d", c.Upload.MaxMergeInputs)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := pdf.ParseTier(c.Compress.DefaultTier); err != nil {
		return fmt.Errorf("compress.default_tier: %w", err)
	}
	if err := c.Watermark.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("watermark: %w", err)
	}
	return nil
}

// YAML renders the configuration with secrets masked
func (c *Config) YAML() ([]byte, error) {
	masked := *c
	if masked.Zotero.APIKey != "" {
		masked.Zotero.APIKey = "********"
	}
	return yaml.Marshal(masked)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
