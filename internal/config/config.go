package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobfit.
type Config struct {
	API       APIConfig
	Storage   StorageConfig
	OutputDir string // where downloaded cover letters and résumés are written
}

// APIConfig points the client at the job-assistant backend.
type APIConfig struct {
	BaseURL      string
	ClientSecret string        // expanded from env var by Load
	Timeout      time.Duration // per-request timeout; 0 means none
}

// StorageConfig selects where the user document is kept.
type StorageConfig struct {
	Backend       string // "sqlite", "redis" or "memory"
	Path          string // sqlite file
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

const (
	defaultStorageBackend = "sqlite"
	defaultStoragePath    = "jobfit.db"
	defaultOutputDir      = "."

	// DefaultPath is tried when neither --config nor JOBFIT_CONFIG is set.
	DefaultPath = "jobfit.yaml"
	// EnvPath names the environment variable holding the config path.
	EnvPath = "JOBFIT_CONFIG"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	API       rawAPIConfig     `yaml:"api"`
	Storage   rawStorageConfig `yaml:"storage"`
	OutputDir string           `yaml:"output_dir"`
}

type rawAPIConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientSecret string `yaml:"client_secret"`
	Timeout      string `yaml:"timeout"`
}

type rawStorageConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// Discover returns the config path to use: flagPath if set, then
// $JOBFIT_CONFIG, then ./jobfit.yaml if it exists. It returns "" when there
// is no config file, in which case FromEnv applies.
func Discover(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return build(raw)
}

// FromEnv builds a config from JOBFIT_API_BASE_URL, JOBFIT_CLIENT_SECRET and
// defaults, for running without a config file.
func FromEnv() (*Config, error) {
	return build(rawConfig{
		API: rawAPIConfig{
			BaseURL:      os.Getenv("JOBFIT_API_BASE_URL"),
			ClientSecret: os.Getenv("JOBFIT_CLIENT_SECRET"),
		},
	})
}

// LoadOrEnv loads the discovered config file, or falls back to FromEnv.
func LoadOrEnv(flagPath string) (*Config, error) {
	path := Discover(flagPath)
	if path == "" {
		return FromEnv()
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) && flagPath == "" && path == DefaultPath {
		return FromEnv()
	}
	return cfg, err
}

func build(raw rawConfig) (*Config, error) {
	var timeout time.Duration // default: none
	if raw.API.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(raw.API.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse api.timeout %q: %w", raw.API.Timeout, err)
		}
	}

	backend := strings.ToLower(raw.Storage.Backend)
	if backend == "" {
		backend = defaultStorageBackend
	}
	path := raw.Storage.Path
	if path == "" {
		path = defaultStoragePath
	}
	outputDir := raw.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:      strings.TrimRight(raw.API.BaseURL, "/"),
			ClientSecret: raw.API.ClientSecret,
			Timeout:      timeout,
		},
		Storage: StorageConfig{
			Backend:       backend,
			Path:          path,
			RedisAddr:     raw.Storage.RedisAddr,
			RedisPassword: raw.Storage.RedisPassword,
			RedisDB:       raw.Storage.RedisDB,
		},
		OutputDir: outputDir,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://, got %q", cfg.API.BaseURL)
	}
	if cfg.API.ClientSecret == "" {
		return fmt.Errorf("api.client_secret is required")
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %v", cfg.API.Timeout)
	}

	switch cfg.Storage.Backend {
	case "sqlite", "memory":
	case "redis":
		if cfg.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required when backend is \"redis\"")
		}
		if cfg.Storage.RedisDB < 0 {
			return fmt.Errorf("storage.redis_db must not be negative, got %d", cfg.Storage.RedisDB)
		}
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, redis, memory, got %q", cfg.Storage.Backend)
	}

	return nil
}
