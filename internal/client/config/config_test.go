package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"testbin"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "127.0.0.1:13730", cfg.ServerEndpointAddr)
	assert.Equal(t, 13731, cfg.ChatPort)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	resetArgs(t, "-a", "example.org:9000", "-p", "15000", "-t", "10")

	cfg := LoadConfig()

	assert.Equal(t, "example.org:9000", cfg.ServerEndpointAddr)
	assert.Equal(t, 15000, cfg.ChatPort)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "example.org:7000",
		"dial_timeout": "5s"
	}`), 0o660))

	resetArgs(t, "-c", path)

	cfg := LoadConfig()

	assert.Equal(t, "example.org:7000", cfg.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 13731, cfg.ChatPort, "absent fields keep defaults")
}

func TestLoadConfig_FlagsBeatJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_addr": "example.org:7000"}`), 0o660))

	resetArgs(t, "-c", path, "-a", "example.org:8000")

	cfg := LoadConfig()
	assert.Equal(t, "example.org:8000", cfg.ServerEndpointAddr)
}
