package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/nikbrunner/favs/internal/storage"
)

// EnvPrefix is the prefix of environment overrides, e.g. FAVS_GATEWAY_URL.
const EnvPrefix = "FAVS"

// Config holds application configuration.
// An empty GatewayURL selects the local gateway backed by DataPath.
type Config struct {
	GatewayURL  string   `json:"gatewayUrl" envconfig:"GATEWAY_URL"`
	PageSize    int      `json:"pageSize" envconfig:"PAGE_SIZE"`
	DataPath    string   `json:"dataPath" envconfig:"DATA_PATH"`
	LogFile     string   `json:"logFile" envconfig:"LOG_FILE"`
	LogLevel    string   `json:"logLevel" envconfig:"LOG_LEVEL"`
	HTTPTimeout Duration `json:"httpTimeout" envconfig:"HTTP_TIMEOUT"`
	MaxRetries  int      `json:"maxRetries" envconfig:"MAX_RETRIES"`
	Debug       bool     `json:"debug" envconfig:"DEBUG"`
}

// Duration is a time.Duration that reads and writes as "20s" in JSON and env.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Decode(s)
}

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	if value == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the default configuration.
func Default() Config {
	dataPath, err := storage.DefaultDataPath()
	if err != nil {
		dataPath = "favorites.db"
	}
	return Config{
		PageSize:    50,
		DataPath:    dataPath,
		LogLevel:    "info",
		HTTPTimeout: Duration{20 * time.Second},
		MaxRetries:  3,
	}
}

// Load reads config from the JSON file, then applies FAVS_* environment overrides.
// Creates the file with defaults if it doesn't exist.
func Load(path string) (*Config, error) {
	config, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := Default()
			// Non-fatal: return defaults even if save fails
			_ = Save(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults for missing fields
	defaults := Default()
	if config.PageSize == 0 {
		config.PageSize = defaults.PageSize
	}
	if config.DataPath == "" {
		config.DataPath = defaults.DataPath
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.HTTPTimeout.Duration == 0 {
		config.HTTPTimeout = defaults.HTTPTimeout
	}

	return &config, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("pageSize must be positive, got %d", c.PageSize)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must not be negative, got %d", c.MaxRetries)
	}
	if c.HTTPTimeout.Duration < 0 {
		return fmt.Errorf("httpTimeout must not be negative, got %s", c.HTTPTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return nil
}

// Remote reports whether a remote gateway is configured.
func (c *Config) Remote() bool {
	return c.GatewayURL != ""
}

// Save writes config to the JSON file.
// Creates the directory if it doesn't exist.
func Save(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the default config path: ~/.config/favs/config.json
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "favs", "config.json"), nil
}
