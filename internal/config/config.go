// Package config provides configuration loading for the findly client.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvBaseURL   = "FINDLY_BASE_URL"
	EnvStatePath = "FINDLY_STATE_PATH"
	EnvDebug     = "FINDLY_DEBUG"
	EnvLogFile   = "FINDLY_LOG_FILE"
)

// Config holds all configuration for the client.
type Config struct {
	Debug  bool         `yaml:"debug"`
	API    APIConfig    `yaml:"api"`
	State  StateConfig  `yaml:"state"`
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
	Watch  WatchConfig  `yaml:"watch"`
}

// APIConfig locates the portal service.
type APIConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// StateConfig locates the persisted session and preferences.
type StateConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LogConfig enables a rotating log file in addition to stderr.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// OutputConfig controls how views are printed.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=text compact json"`
	Color  *bool  `yaml:"color"`
}

// ColorOrDefault reports whether to colour output; defaults to true when unset.
func (o *OutputConfig) ColorOrDefault() bool {
	if o.Color != nil {
		return *o.Color
	}
	return true
}

// WatchConfig holds auto-upload watch settings.
type WatchConfig struct {
	Extensions []string `yaml:"extensions"`
	Recursive  *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to false when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return false
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	loadDotEnv("")
	applyEnv(&cfg)
	cfg.State.Path = expandPath(cfg.State.Path, ".")
	cfg.Log.File = expandOptional(cfg.Log.File, ".")
	return &cfg
}

// Load reads and parses the config file at path, applies defaults and environment overrides,
// expands paths and validates the result. A .env file next to the config or in the working
// directory is loaded first; variables already set in the environment win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	ApplyDefaults(&cfg)
	loadDotEnv(configDir)
	applyEnv(&cfg)

	cfg.State.Path = expandPath(cfg.State.Path, configDir)
	cfg.Log.File = expandOptional(cfg.Log.File, configDir)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), strings.TrimSpace(fe.Tag()+" "+fe.Param()))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.State.Path == "" {
		cfg.State.Path = ".findly/state.db"
	}
	if cfg.Log.File != "" {
		if cfg.Log.MaxSizeMB == 0 {
			cfg.Log.MaxSizeMB = 10
		}
		if cfg.Log.MaxBackups == 0 {
			cfg.Log.MaxBackups = 3
		}
		if cfg.Log.MaxAgeDays == 0 {
			cfg.Log.MaxAgeDays = 28
		}
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".docx"}
	}
}

func loadDotEnv(configDir string) {
	candidates := []string{".env"}
	if configDir != "" && configDir != "." {
		candidates = append([]string{filepath.Join(configDir, ".env")}, candidates...)
	}
	for _, p := range candidates {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", p, err)
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvStatePath); v != "" {
		cfg.State.Path = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
		ApplyDefaults(cfg)
	}
}

func expandOptional(path, configDir string) string {
	if path == "" {
		return ""
	}
	return expandPath(path, configDir)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		abs, err := filepath.Abs(filepath.Join(configDir, path))
		if err != nil {
			return filepath.Join(configDir, path)
		}
		return abs
	}
	path = strings.TrimPrefix(path, "~/")
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
