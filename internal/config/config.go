// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-chat/internal/storage"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL      = "RESUME_CHAT_API_URL"
	EnvStorage     = "RESUME_CHAT_STORAGE"
	EnvDSN         = "RESUME_CHAT_DSN"
	EnvLogLevel    = "LOG_LEVEL"
	EnvChromePath  = "CHROME_PATH"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRedisAddr   = "REDIS_ADDR"
)

// Defaults
const (
	DefaultAPIURL         = "http://localhost:5000"
	DefaultTimeoutSeconds = 60
	DefaultLogLevel       = "info"
)

// Storage selects the backend that persists the session between runs.
type Storage struct {
	Driver    string `json:"driver,omitempty" yaml:"driver,omitempty" validate:"omitempty,oneof=memory sqlite postgres redis"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty" validate:"required_if=Driver sqlite"` // SQLite file
	DSN       string `json:"dsn,omitempty" yaml:"dsn,omitempty" validate:"required_if=Driver postgres"`
	Addr      string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"required_if=Driver redis"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int    `json:"db,omitempty" yaml:"db,omitempty" validate:"gte=0"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"` // Separates profiles sharing one database
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Backend
	APIURL         string `json:"api_url,omitempty" yaml:"api_url,omitempty" validate:"omitempty,url"` // Base URL of the résumé chat server
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`

	Storage Storage `json:"storage" yaml:"storage"`

	// Export
	ExportDir  string `json:"export_dir,omitempty" yaml:"export_dir,omitempty"`   // Where PDFs are written
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"` // Browser used for rendering; empty means auto-detect
	Template   string `json:"template,omitempty" yaml:"template,omitempty"`       // Path to an HTML résumé template

	// Behavior
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Verbose  bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Storage: Storage{
			Driver:    storage.DriverSQLite,
			Path:      DefaultStatePath(),
			Namespace: storage.DefaultNamespace,
		},
		ExportDir: ".",
		LogLevel:  DefaultLogLevel,
	}
}

// DefaultStatePath is the SQLite file under the user config directory.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".resume-chat", "state.db")
	}
	return filepath.Join(dir, "resume-chat", "state.db")
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load merges the optional file at path over Default and applies environment overrides.
func Load(path string, getenv func(string) string) (Config, error) {
	var file Config
	if path != "" {
		cfg, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		file = *cfg
	}
	merged := file.MergeWithDefaults(Default())
	return merged.ApplyEnv(getenv), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value()))
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.ExportDir == "" {
		result.ExportDir = defaults.ExportDir
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// A configured driver brings its own settings; only an unset driver takes the default backend.
	if result.Storage.Driver == "" {
		ns := result.Storage.Namespace
		result.Storage = defaults.Storage
		if ns != "" {
			result.Storage.Namespace = ns
		}
	}
	if result.Storage.Driver == storage.DriverSQLite && result.Storage.Path == "" {
		result.Storage.Path = defaults.Storage.Path
	}
	if result.Storage.Namespace == "" {
		result.Storage.Namespace = defaults.Storage.Namespace
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv returns a copy of c with every non-empty environment override applied.
// RESUME_CHAT_DSN takes precedence over DATABASE_URL.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.APIURL, EnvAPIURL)
	set(&c.Storage.Driver, EnvStorage)
	set(&c.Storage.DSN, EnvDatabaseURL)
	set(&c.Storage.DSN, EnvDSN)
	set(&c.Storage.Addr, EnvRedisAddr)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.ChromePath, EnvChromePath)
	c.LogLevel = strings.ToLower(c.LogLevel)
	return c
}

// Timeout is the HTTP timeout for backend calls.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SlogLevel maps LogLevel to a slog level. Verbose forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:    c.Storage.Driver,
		Path:      c.Storage.Path,
		DSN:       c.Storage.DSN,
		Addr:      c.Storage.Addr,
		Password:  c.Storage.Password,
		DB:        c.Storage.DB,
		Namespace: c.Storage.Namespace,
	}
}
