package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitbridge/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Assign.Previous)
	assert.True(t, cfg.Assign.ConnectToPreviousHead)
	assert.True(t, cfg.Assign.CompactOnFinish)
	assert.Equal(t, 0, cfg.Assign.Tunnel.MaxLen)
	assert.False(t, cfg.Assign.Tunnel.Assign)
	assert.Empty(t, cfg.Index.Directory)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitbridge.yaml")

	content := `
assign:
  previous: false
  tunnel:
    max_len: 3
    assign: true
index:
  directory: /var/lib/gitbridge/index
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Assign.Previous)
	assert.True(t, cfg.Assign.ConnectToPreviousHead, "unset keys keep defaults")
	assert.Equal(t, 3, cfg.Assign.Tunnel.MaxLen)
	assert.True(t, cfg.Assign.Tunnel.Assign)
	assert.Equal(t, "/var/lib/gitbridge/index", cfg.Index.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GITBRIDGE_ASSIGN_TUNNEL_MAX_LEN", "7")
	t.Setenv("GITBRIDGE_LOGGING_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Assign.Tunnel.MaxLen)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateRejectsNegativeTunnel(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Assign.Tunnel.MaxLen = -1
	cfg.Logging.Level = "info"

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidTunnelLen)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Logging.Level = "loud"

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidLogLevel)
}

func TestMissingConfigFileFails(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
