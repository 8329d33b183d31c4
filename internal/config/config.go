// Package config handles loading and resolving aquarius configuration.
// Resolution order (later layers win):
//  1. built-in defaults
//  2. config.json in the current working directory
//  3. .env in the current working directory
//  4. environment variables AQUARIUS_ORIGIN, AQUARIUS_DB_PATH, AQUARIUS_TIMEOUT
//  5. CLI flags
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigFile      = "config.json"
	DefaultEnvFile         = ".env"
	DefaultOrigin          = "http://localhost:3000"
	DefaultFormat          = "table"
	DefaultTimeout         = 15 * time.Second
	DefaultRate            = 5.0
	DefaultConcurrency     = 3
	DefaultBreakerFailures = 0
	EnvOrigin              = "AQUARIUS_ORIGIN"
	EnvDBPath              = "AQUARIUS_DB_PATH"
	EnvTimeout             = "AQUARIUS_TIMEOUT"
)

// File is the on-disk representation of config.json.
type File struct {
	Origin          string   `json:"origin"`
	DefaultFormat   string   `json:"default_format"`
	Timeout         string   `json:"timeout"`
	Rate            *float64 `json:"rate,omitempty"`
	DBPath          string   `json:"db_path"`
	BreakerFailures uint32   `json:"breaker_failures"`
	Concurrency     int      `json:"concurrency"`
	MetricsFile     string   `json:"metrics_file,omitempty"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	Origin          string        `validate:"required,http_url"`
	Format          string        `validate:"oneof=table json jsonl csv md"`
	Timeout         time.Duration `validate:"gt=0"`
	Rate            float64       `validate:"gte=0"`
	DBPath          string        `validate:"required"`
	BreakerFailures uint32        `validate:"lte=100"`
	Concurrency     int           `validate:"gte=1,lte=16"`
	MetricsFile     string        `validate:"omitempty,endswith=.prom"`

	ConfigPath string // path of the config.json that was loaded (empty if none found)
	EnvPath    string // path of the .env that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	NoStore bool
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Overrides carries CLI flag values. Zero values leave the lower layers alone.
type Overrides struct {
	Origin  string
	DBPath  string
	Timeout time.Duration
	Format  string
}

// Load resolves configuration from all sources.
func Load(ov Overrides) (*Config, error) {
	cfg := &Config{
		Origin:          DefaultOrigin,
		Format:          DefaultFormat,
		Timeout:         DefaultTimeout,
		Rate:            DefaultRate,
		BreakerFailures: DefaultBreakerFailures,
		Concurrency:     DefaultConcurrency,
	}

	// Layer 1: config.json
	f, path, err := loadFile()
	switch {
	case err == nil:
		if err := applyFile(cfg, f, path); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layer 2: .env, then the process environment on top of it
	if env, err := godotenv.Read(DefaultEnvFile); err == nil {
		if abs, err := filepath.Abs(DefaultEnvFile); err == nil {
			cfg.EnvPath = abs
		}
		if err := applyEnv(cfg, func(k string) string { return env[k] }); err != nil {
			return nil, fmt.Errorf("%s: %w", DefaultEnvFile, err)
		}
	}
	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}

	// Layer 3: CLI flags
	if ov.Origin != "" {
		cfg.Origin = ov.Origin
	}
	if ov.DBPath != "" {
		cfg.DBPath = ov.DBPath
	}
	if ov.Timeout > 0 {
		cfg.Timeout = ov.Timeout
	}
	if ov.Format != "" {
		cfg.Format = ov.Format
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".aquarius", "aquarius.db")
		}
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks the resolved values and reports every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fieldKey(fe.Field()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
}

// fieldKey maps a Config field name to its config.json key.
func fieldKey(field string) string {
	switch field {
	case "Format":
		return "default_format"
	case "DBPath":
		return "db_path"
	default:
		return strings.ToLower(field)
	}
}

func applyEnv(cfg *Config, get func(string) string) error {
	if v := get(EnvOrigin); v != "" {
		cfg.Origin = v
	}
	if v := get(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := get(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// loadFile attempts to read config.json from the current working directory.
// A missing file returns an error wrapping os.ErrNotExist.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

// ReadFile parses the config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.json not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, nil
}

// applyFile copies values from a parsed File into cfg, skipping fields that
// are absent. A present rate of 0 turns pacing off. Malformed values fail the
// same way they do in the environment layer.
func applyFile(cfg *Config, f *File, path string) error {
	cfg.ConfigPath = path
	if f.Origin != "" {
		cfg.Origin = f.Origin
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("%s: timeout: %w", DefaultConfigFile, err)
		}
		cfg.Timeout = d
	}
	if f.Rate != nil {
		cfg.Rate = *f.Rate
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.BreakerFailures > 0 {
		cfg.BreakerFailures = f.BreakerFailures
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.MetricsFile != "" {
		cfg.MetricsFile = f.MetricsFile
	}
	return nil
}

// ─── Keys ─────────────────────────────────────────────────────────────────────

// Keys lists the settable config.json keys.
var Keys = []string{"origin", "default_format", "timeout", "rate", "db_path", "breaker_failures", "concurrency", "metrics_file"}

// UnknownKeyError reports a key that is not in Keys.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	valid := append([]string(nil), Keys...)
	sort.Strings(valid)
	return fmt.Sprintf("unknown config key: %q\n\nValid keys: %s", e.Key, strings.Join(valid, ", "))
}

// Set assigns value to key, parsing numbers and durations.
func (f *File) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "origin":
		f.Origin = value
	case "default_format", "format":
		f.DefaultFormat = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("timeout must be a duration such as 15s: %w", err)
		}
		f.Timeout = value
	case "rate":
		r, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("rate must be a number")
		}
		f.Rate = &r
	case "db_path":
		f.DBPath = value
	case "breaker_failures":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("breaker_failures must be a non-negative integer")
		}
		f.BreakerFailures = uint32(n)
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer")
		}
		f.Concurrency = n
	case "metrics_file":
		f.MetricsFile = value
	default:
		return &UnknownKeyError{Key: key}
	}
	return nil
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `aquarius config init`.
func Template() File {
	r := DefaultRate
	return File{
		Origin:          DefaultOrigin,
		DefaultFormat:   DefaultFormat,
		Timeout:         DefaultTimeout.String(),
		Rate:            &r,
		BreakerFailures: DefaultBreakerFailures,
		Concurrency:     DefaultConcurrency,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
