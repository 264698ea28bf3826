package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	CORS   CORSConfig   `yaml:"cors"`
	Solver SolverConfig `yaml:"solver"`
	Chart  ChartConfig  `yaml:"chart"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int `yaml:"port"`
	Host                string `yaml:"host"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// GetHost returns the server host, with environment override
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// ReadTimeout returns the configured read timeout as a duration
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// CORSConfig holds cross-origin settings for the API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SolverConfig holds calculator defaults applied when a request omits them
type SolverConfig struct {
	DefaultAlpha       float64 `yaml:"default_alpha"`
	DefaultPowerTarget float64 `yaml:"default_power_target"`
}

// ChartConfig holds power-curve chart rendering dimensions
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Solver.DefaultAlpha == 0 {
		cfg.Solver.DefaultAlpha = 0.05
	}
	if cfg.Solver.DefaultPowerTarget == 0 {
		cfg.Solver.DefaultPowerTarget = 0.8
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 960
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 600
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so local overrides can live in .env and real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		var parsed []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				parsed = append(parsed, o)
			}
		}
		if len(parsed) > 0 {
			cfg.CORS.AllowedOrigins = parsed
		}
	}
	if alpha := os.Getenv("SOLVER_DEFAULT_ALPHA"); alpha != "" {
		if a, err := strconv.ParseFloat(alpha, 64); err == nil {
			cfg.Solver.DefaultAlpha = a
		}
	}
	if target := os.Getenv("SOLVER_DEFAULT_POWER_TARGET"); target != "" {
		if p, err := strconv.ParseFloat(target, 64); err == nil {
			cfg.Solver.DefaultPowerTarget = p
		}
	}

	return cfg, nil
}
