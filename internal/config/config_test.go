package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletgate/internal/siwe"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.HTTP.Addr)
	assert.Equal(t, siwe.DefaultDomain, c.Auth.Domain)
	assert.Equal(t, siwe.DefaultURI, c.Auth.URI)
	assert.Equal(t, 24*time.Hour, c.Auth.SessionTTL)
	assert.False(t, c.Auth.RotateNonceOnLogin)
	assert.Equal(t, "memory", c.Store.Driver)
	assert.Equal(t, time.Minute, c.Cache.NotesTTL)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WALLETGATE_AUTH_DOMAIN", "app.example.com")
	t.Setenv("WALLETGATE_AUTH_URI", "https://app.example.com")
	t.Setenv("WALLETGATE_AUTH_ROTATE_NONCE_ON_LOGIN", "true")
	t.Setenv("WALLETGATE_AUTH_SESSION_TTL", "2h")

	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "app.example.com", c.Auth.Domain)
	assert.Equal(t, "https://app.example.com", c.Auth.URI)
	assert.True(t, c.Auth.RotateNonceOnLogin)
	assert.Equal(t, 2*time.Hour, c.Auth.SessionTTL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":8080"
store:
  driver: postgres
  dsn: "host=localhost user=app dbname=app"
cache:
  notes_ttl: 30s
`), 0o600))

	c, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, "postgres", c.Store.Driver)
	assert.Equal(t, 30*time.Second, c.Cache.NotesTTL)
}

func TestValidate(t *testing.T) {
	t.Setenv("WALLETGATE_STORE_DRIVER", "postgres")
	_, err := Load(New(), "")
	assert.ErrorContains(t, err, "store.dsn")

	t.Setenv("WALLETGATE_STORE_DRIVER", "sqlite")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "unsupported")
}

func TestValidateTrustedProxies(t *testing.T) {
	c, err := Load(New(), "")
	require.NoError(t, err)
	assert.Empty(t, c.HTTP.TrustedProxies)

	t.Setenv("WALLETGATE_HTTP_TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")
	c, err = Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, c.HTTP.TrustedProxies)

	t.Setenv("WALLETGATE_HTTP_TRUSTED_PROXIES", "proxy.internal")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "trusted_proxies")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
