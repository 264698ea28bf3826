package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  read_timeout_seconds: 20
  write_timeout_seconds: 40

cors:
  allowed_origins:
    - "https://calc.example.com"

solver:
  default_alpha: 0.01
  default_power_target: 0.9

chart:
  width: 1280
  height: 720
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Test server config
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 20, cfg.Server.ReadTimeoutSeconds)
	assert.Equal(t, 40, cfg.Server.WriteTimeoutSeconds)

	// Test CORS config
	assert.Equal(t, []string{"https://calc.example.com"}, cfg.CORS.AllowedOrigins)

	// Test solver config
	assert.Equal(t, 0.01, cfg.Solver.DefaultAlpha)
	assert.Equal(t, 0.9, cfg.Solver.DefaultPowerTarget)

	// Test chart config
	assert.Equal(t, 1280, cfg.Chart.Width)
	assert.Equal(t, 720, cfg.Chart.Height)
}

func TestLoadDefaults(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "localhost"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Verify defaults are applied
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 15, cfg.Server.ReadTimeoutSeconds)
	assert.Equal(t, 30, cfg.Server.WriteTimeoutSeconds)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 0.05, cfg.Solver.DefaultAlpha)
	assert.Equal(t, 0.8, cfg.Solver.DefaultPowerTarget)
	assert.Equal(t, 960, cfg.Chart.Width)
	assert.Equal(t, 600, cfg.Chart.Height)
}

func TestLoadFromEnv(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
solver:
  default_alpha: 0.05
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Set environment variables
	os.Setenv("PORT", "3000")
	os.Setenv("SOLVER_DEFAULT_ALPHA", "0.1")
	os.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("SOLVER_DEFAULT_ALPHA")
		os.Unsetenv("CORS_ALLOWED_ORIGINS")
	}()

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should override file values
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 0.1, cfg.Solver.DefaultAlpha)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestTimeouts(t *testing.T) {
	cfg := ServerConfig{ReadTimeoutSeconds: 20, WriteTimeoutSeconds: 45}
	assert.Equal(t, 20*1000000000, int(cfg.ReadTimeout().Nanoseconds()))
	assert.Equal(t, 45*1000000000, int(cfg.WriteTimeout().Nanoseconds()))
}

func TestGetHost(t *testing.T) {
	cfg := ServerConfig{Host: "localhost"}
	assert.Equal(t, "localhost", cfg.GetHost())

	os.Setenv("SERVER_HOST", "0.0.0.0")
	defer os.Unsetenv("SERVER_HOST")
	assert.Equal(t, "0.0.0.0", cfg.GetHost())
}
