package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PortEnv selects the listening port when set.
const PortEnv = "APP_PORT"

// RegistrationsFile is the name of the registrations document inside ConfigDir.
const RegistrationsFile = "registrations.json"

// Config is captured once at startup and never mutated afterwards.
// Every field has a usable default, so an empty YAML file is valid.
type Config struct {
	// Host is the bind address. Default: 0.0.0.0 (all interfaces).
	Host string `yaml:"host"`

	// Port is the listening port. APP_PORT and --port override it.
	// Default: 3000
	Port int `yaml:"port"`

	// DistDir holds the built front-end (index.html, assets/...).
	DistDir string `yaml:"dist_dir"`

	// LocalesDir holds one <locale>.json per language, served under /locales/.
	LocalesDir string `yaml:"locales_dir"`

	// ConfigDir holds registrations.json. It is created at startup if missing.
	ConfigDir string `yaml:"config_dir"`

	// MaxConns caps concurrent connections. 0 means unlimited.
	MaxConns int `yaml:"max_conns"`

	// MaxBodyBytes caps the admin write body. Default: 1 MiB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// AdminWritesPerMinute throttles POST /_admin/registrations.
	// 0 disables the throttle.
	AdminWritesPerMinute int `yaml:"admin_writes_per_minute"`

	Log Log `yaml:"log"`

	// RegistrationsPath is derived: <ConfigDir>/registrations.json.
	RegistrationsPath string `yaml:"-"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json|logfmt
	// File, when set, receives the log instead of stderr and is rotated.
	File string `yaml:"file"`
}

// Overrides carries values set on the command line. Zero values are unset.
type Overrides struct {
	Port int
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         3000,
		DistDir:      "dist",
		LocalesDir:   "locales",
		ConfigDir:    "config",
		MaxBodyBytes: 1 << 20,
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the startup configuration. path may be empty, in which case only
// defaults, APP_PORT and overrides apply.
func Load(path string, ov Overrides) (Config, error) {
	return load(path, os.LookupEnv, ov)
}

func load(path string, lookupEnv func(string) (string, bool), ov Overrides) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if v, ok := lookupEnv(PortEnv); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid port %q", PortEnv, v)
		}
		cfg.Port = port
	}
	if ov.Port != 0 {
		cfg.Port = ov.Port
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.absolutize(); err != nil {
		return Config{}, err
	}
	cfg.RegistrationsPath = filepath.Join(cfg.ConfigDir, RegistrationsFile)
	return cfg, nil
}

// Validate checks field ranges. It does not touch the filesystem.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DistDir == "" {
		errs = append(errs, errors.New("dist_dir is required"))
	}
	if c.LocalesDir == "" {
		errs = append(errs, errors.New("locales_dir is required"))
	}
	if c.ConfigDir == "" {
		errs = append(errs, errors.New("config_dir is required"))
	}
	if c.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("max_conns must not be negative, got %d", c.MaxConns))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.AdminWritesPerMinute < 0 {
		errs = append(errs, fmt.Errorf("admin_writes_per_minute must not be negative, got %d", c.AdminWritesPerMinute))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) absolutize() error {
	for _, p := range []*string{&c.DistDir, &c.LocalesDir, &c.ConfigDir} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("abs %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}
