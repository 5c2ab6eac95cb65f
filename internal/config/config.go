package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/glefebvre/mediasort/internal/errors"
	"github.com/glefebvre/mediasort/internal/processor"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Paths      PathsConfig      `mapstructure:"paths" toml:"paths"`
	Extensions ExtensionsConfig `mapstructure:"extensions" toml:"extensions"`
	Patterns   PatternsConfig   `mapstructure:"patterns" toml:"patterns"`
	Organize   OrganizeConfig   `mapstructure:"organize" toml:"organize"`
	Logging    LoggingConfig    `mapstructure:"logging" toml:"logging"`
}

// PathsConfig holds the library roots
type PathsConfig struct {
	DestFolder      string `mapstructure:"dest_folder" toml:"dest_folder"`
	DownloadsFolder string `mapstructure:"path_dl_files" toml:"path_dl_files"`
}

// ExtensionsConfig holds the extension sets driving the reconcile phase
type ExtensionsConfig struct {
	Video  []string `mapstructure:"list_extension" toml:"list_extension"`
	Delete []string `mapstructure:"file_dl" toml:"file_dl"`
}

// PatternsConfig holds the filename patterns and grouping threshold
type PatternsConfig struct {
	Cleaning            []string `mapstructure:"elt_deleted_patterns" toml:"elt_deleted_patterns"`
	Series              string   `mapstructure:"series_pattern" toml:"series_pattern"`
	SimilarityThreshold *float64 `mapstructure:"similarity_threshold" toml:"similarity_threshold"`
}

// OrganizeConfig holds run behaviour settings
type OrganizeConfig struct {
	CollisionPolicy string `mapstructure:"collision_policy" toml:"collision_policy"`
	LockFile        string `mapstructure:"lock_file" toml:"lock_file"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" toml:"level"`
	Format     string `mapstructure:"format" toml:"format"`
	File       string `mapstructure:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" toml:"compress"`
}

var cfg *Config

var configKeys = []string{
	"paths.dest_folder",
	"paths.path_dl_files",
	"extensions.list_extension",
	"extensions.file_dl",
	"patterns.elt_deleted_patterns",
	"patterns.series_pattern",
	"patterns.similarity_threshold",
	"organize.collision_policy",
	"organize.lock_file",
	"logging.level",
	"logging.format",
	"logging.file",
	"logging.max_size_mb",
	"logging.max_backups",
	"logging.max_age_days",
	"logging.compress",
}

// Load reads configuration from file and environment variables.
// An empty path searches the default locations for a file named config.
func Load(path string) error {
	viper.Reset()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/mediasort")
	}

	setDefaults()

	// Enable environment variable overrides
	viper.SetEnvPrefix("MEDIASORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range configKeys {
		viper.BindEnv(key)
	}
	bindEnvWithAlternatives("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return apperrors.ConfigError("failed to read config file", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return apperrors.ConfigError("failed to unmarshal config", err)
	}

	if err := loaded.normalize(); err != nil {
		return err
	}

	if err := loaded.validate(); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &Config{}
	}
	return cfg
}

// bindEnvWithAlternatives binds a viper key to environment variables with alternative names
func bindEnvWithAlternatives(key string, alternatives ...string) {
	for _, alt := range alternatives {
		if value := os.Getenv(alt); value != "" {
			viper.Set(key, value)
			break
		}
	}
}

func setDefaults() {
	viper.SetDefault("organize.collision_policy", processor.CollisionFail)
	viper.SetDefault("organize.lock_file", filepath.Join(os.TempDir(), "mediasort.lock"))

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.max_size_mb", 10)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age_days", 28)
	viper.SetDefault("logging.compress", false)
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DestFolder, err = ExpandPath(c.Paths.DestFolder); err != nil {
		return apperrors.InvalidConfigError("paths.dest_folder", "cannot be resolved", err)
	}
	if c.Paths.DownloadsFolder, err = ExpandPath(c.Paths.DownloadsFolder); err != nil {
		return apperrors.InvalidConfigError("paths.path_dl_files", "cannot be resolved", err)
	}

	c.Extensions.Video = NormalizeExtensions(c.Extensions.Video)
	c.Extensions.Delete = NormalizeExtensions(c.Extensions.Delete)
	c.Patterns.Cleaning = trimAll(c.Patterns.Cleaning)
	c.Patterns.Series = strings.TrimSpace(c.Patterns.Series)
	c.Organize.CollisionPolicy = strings.ToLower(strings.TrimSpace(c.Organize.CollisionPolicy))
	return nil
}

func (c *Config) validate() error {
	if c.Paths.DestFolder == "" {
		return apperrors.MissingConfigError("paths.dest_folder")
	}
	if c.Paths.DownloadsFolder == "" {
		return apperrors.MissingConfigError("paths.path_dl_files")
	}
	if c.Patterns.Series == "" {
		return apperrors.MissingConfigError("patterns.series_pattern")
	}
	if c.Patterns.SimilarityThreshold == nil {
		return apperrors.MissingConfigError("patterns.similarity_threshold")
	}

	if t := *c.Patterns.SimilarityThreshold; t < 0 || t > 1 {
		return apperrors.InvalidConfigError("patterns.similarity_threshold", "must be between 0 and 1", nil)
	}

	series, err := regexp.Compile(c.Patterns.Series)
	if err != nil {
		return apperrors.InvalidConfigError("patterns.series_pattern", "is not a valid regular expression", err)
	}
	if series.SubexpIndex("series") < 0 {
		return apperrors.InvalidConfigError("patterns.series_pattern", "must define a named group 'series'", nil)
	}
	for i, p := range c.Patterns.Cleaning {
		if _, err := regexp.Compile(p); err != nil {
			key := fmt.Sprintf("patterns.elt_deleted_patterns[%d]", i)
			return apperrors.InvalidConfigError(key, "is not a valid regular expression", err)
		}
	}

	switch c.Organize.CollisionPolicy {
	case processor.CollisionFail, processor.CollisionOverwrite:
	default:
		return apperrors.InvalidConfigError("organize.collision_policy", "must be one of: fail, overwrite", nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats := map[string]bool{"json": true, "text": true}

	if c.Logging.Format != "" && !validFormats[c.Logging.Format] {
		return apperrors.InvalidConfigError("logging.format", "must be one of: json, text", nil)
	}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return apperrors.InvalidConfigError("logging.level", "must be one of: debug, info, warn, error", nil)
	}

	return nil
}

// Threshold returns the configured similarity threshold
func (c *Config) Threshold() float64 {
	if c.Patterns.SimilarityThreshold == nil {
		return 0
	}
	return *c.Patterns.SimilarityThreshold
}

// MoviesFolder returns the folder holding movie files
func (c *Config) MoviesFolder() string {
	return filepath.Join(c.Paths.DestFolder, "Movies")
}

// TOML renders the effective configuration
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// NormalizeExtensions lowercases extensions and strips dots and blanks
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
