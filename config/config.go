package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	productionTimeout = 10 * time.Second
	defaultTimeout    = 60 * time.Second
)

type Config struct {
	AppEnv           string        `envconfig:"APP_ENV" default:"dev"`
	BackendURL       string        `envconfig:"BACKEND_URL" default:"http://localhost:5000"`
	AnalyzePath      string        `envconfig:"ANALYZE_PATH" default:"/api/analyze"`
	HealthPath       string        `envconfig:"HEALTH_PATH" default:"/health"`
	RequestTimeout   time.Duration `envconfig:"REQUEST_TIMEOUT"`
	HealthInterval   time.Duration `envconfig:"HEALTH_INTERVAL" default:"15s"`
	ListenAddr       string        `envconfig:"LISTEN_ADDR" default:":8501"`
	MaxUploadBytes   int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
	MaxResponseBytes int64         `envconfig:"MAX_RESPONSE_BYTES" default:"1048576"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load decodes the process environment into a Config. Call LoadEnv first
// so values from the .env file are visible.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}

	if cfg.RequestTimeout == 0 {
		if cfg.AppEnv == "production" {
			cfg.RequestTimeout = productionTimeout
		} else {
			cfg.RequestTimeout = defaultTimeout
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_URL %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid BACKEND_URL %q: scheme must be http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL %q: missing host", c.BackendURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	if c.MaxUploadBytes <= 0 || c.MaxResponseBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES and MAX_RESPONSE_BYTES must be positive")
	}
	return nil
}

func (c Config) AnalyzeURL() string {
	return joinURL(c.BackendURL, c.AnalyzePath)
}

func (c Config) HealthURL() string {
	return joinURL(c.BackendURL, c.HealthPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
