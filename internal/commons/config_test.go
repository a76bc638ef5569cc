package commons

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Order.MaxRetryAttempts)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9000
  shutdownTimeout: 20s
database:
  name: atelier_prod
order:
  maxRetryAttempts: 4
mail:
  transport: http
  apiUrl: https://mail.example.com/send
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "atelier_prod", cfg.Database.Name)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 4, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, "http", cfg.Mail.Transport)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeFile(t, "server: [unclosed")

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadConfig_ValidatesOverlay(t *testing.T) {
	path := writeFile(t, "order:\n  maxRetryAttempts: 0\n")

	_, err := LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDER_MAX_RETRY_ATTEMPTS")
}
