package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfig names the config file when no --config flag is given.
	EnvConfig = "ADVENT_CONFIG"
	// DefaultPath is read if it exists and nothing else is named.
	DefaultPath = "advent.yaml"

	EnvPGPassword   = "ADVENT_PG_PASSWORD"
	EnvMQTTPassword = "ADVENT_MQTT_PASSWORD"

	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	Version     int    `yaml:"version"`
	InputsDir   string `yaml:"inputs_dir"`
	AnswersFile string `yaml:"answers_file"`
	StepHz      int    `yaml:"step_hz"`
	Namespace   string `yaml:"namespace"`

	Storage struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"storage"`

	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		DBName   string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"`
		Password string `yaml:"-"`
	} `yaml:"postgres"`

	MQTT struct {
		Enabled     bool   `yaml:"enabled"`
		URL         string `yaml:"url"`
		ClientID    string `yaml:"client_id"`
		TopicPrefix string `yaml:"topic_prefix"`
		Username    string `yaml:"username"`
		Password    string `yaml:"-"`
	} `yaml:"mqtt"`

	API struct {
		Port int `yaml:"port"`
	} `yaml:"api"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Version: 1}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported advent.yaml version: %d", cfg.Version)
	}

	switch cfg.StorageDriver() {
	case DriverBadger, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// Resolve picks the config file (flag, then $ADVENT_CONFIG, then
// ./advent.yaml if present), loads it and resolves secrets. With no file
// at all the defaults are used.
func Resolve(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	var cfg *Config
	switch {
	case path != "":
		c, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		c, err := Load(DefaultPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			cfg = Default()
		case err != nil:
			return nil, err
		default:
			cfg = c
		}
	}

	if err := cfg.ResolveSecrets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InputsPath returns the directory holding dayNN.input files.
func (c *Config) InputsPath() string {
	if c.InputsDir == "" {
		return filepath.Join("assets", "days")
	}
	return c.InputsDir
}

// StepRate returns the step loop frequency, defaulting to 3 Hz.
func (c *Config) StepRate() int {
	if c.StepHz <= 0 {
		return 3
	}
	return c.StepHz
}

// KeyNamespace returns the persistence namespace, defaulting to "advent".
func (c *Config) KeyNamespace() string {
	if c.Namespace == "" {
		return "advent"
	}
	return c.Namespace
}

// StorageDriver returns the progress backend, defaulting to badger.
func (c *Config) StorageDriver() string {
	if c.Storage.Driver == "" {
		return DriverBadger
	}
	return c.Storage.Driver
}

// StoragePath returns the badger directory. The default lives under
// $XDG_DATA_HOME (or ~/.local/share).
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".advent", "progress")
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "advent", "progress")
}

// APIPort returns the configured API port, defaulting to 8080 if not set.
func (c *Config) APIPort() int {
	if c.API.Port == 0 {
		return 8080
	}
	return c.API.Port
}

// MQTTTopicPrefix returns the MQTT topic root, defaulting to "advent".
func (c *Config) MQTTTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "advent"
	}
	return strings.TrimSuffix(c.MQTT.TopicPrefix, "/")
}

// MQTTClientID returns the MQTT client ID, defaulting to "advent-engine".
func (c *Config) MQTTClientID() string {
	if c.MQTT.ClientID == "" {
		return "advent-engine"
	}
	return c.MQTT.ClientID
}

// LogLevel parses log.level. Unknown values fall back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from log.format: "json" or "text".
// Left empty, a terminal gets text and anything else gets JSON.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}

	format := strings.ToLower(c.Log.Format)
	if format == "" {
		format = "json"
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "text"
		}
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
