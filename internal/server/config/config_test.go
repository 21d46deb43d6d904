package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "secretKey", cfg.SecretKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 5*time.Minute, cfg.ShareSweepInterval)
	assert.Equal(t, BlobBackendPostgres, cfg.BlobBackend)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "conf.json")
	body := `{
		"endpoint_addr": ":9090",
		"secret_key": "from-json",
		"access_token_validity_duration": "30m",
		"blob_backend": "s3"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	os.Args = []string{"testbin", "-c", path}
	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "from-json", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5*time.Minute, cfg.ShareSweepInterval)
}

func TestLoadConfig_FlagsOverrideJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint_addr": ":9090"}`), 0o600))

	os.Args = []string{"testbin", "-c", path, "-a", ":7070", "-t", "5"}
	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
}
