package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client settings. Values come from defaults, then an optional
// YAML file, then environment variables.
type Config struct {
	// Base URL of the REST backend, without the /api suffix.
	APIURL string `yaml:"api_url"`

	// Where the session token and profile are persisted.
	SessionFile string `yaml:"session_file"`

	HTTPTimeout         time.Duration `yaml:"http_timeout"`
	ReadRetryMaxElapsed time.Duration `yaml:"read_retry_max_elapsed"`

	// Directory for downloaded reports.
	DownloadDir string `yaml:"download_dir"`

	// PATCH call_status=in_progress before dialing.
	MarkInProgressOnStart bool `yaml:"mark_in_progress_on_start"`

	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		APIURL:              "http://localhost:8000",
		SessionFile:         defaultSessionFile(),
		HTTPTimeout:         15 * time.Second,
		ReadRetryMaxElapsed: 10 * time.Second,
		DownloadDir:         ".",
		Environment:         "local",
		LogLevel:            "info",
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "callcenter", "session.json")
}

// Load reads path (when non-empty) over the defaults and applies env
// overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CALLCENTER_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("CALLCENTER_SESSION_FILE"); v != "" {
		c.SessionFile = v
	}
	if v := os.Getenv("CALLCENTER_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("CALLCENTER_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CALLCENTER_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}
	if v := os.Getenv("CALLCENTER_READ_RETRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CALLCENTER_READ_RETRY: %w", err)
		}
		c.ReadRetryMaxElapsed = d
	}
	if v := os.Getenv("CALLCENTER_MARK_IN_PROGRESS"); v != "" {
		c.MarkInProgressOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks required fields.
func (c Config) Validate() error {
	u := strings.TrimSpace(c.APIURL)
	if u == "" {
		return fmt.Errorf("api_url is required")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("api_url must be http(s): %q", c.APIURL)
	}
	if c.SessionFile == "" {
		return fmt.Errorf("session_file is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	return nil
}

// Save writes the config as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
