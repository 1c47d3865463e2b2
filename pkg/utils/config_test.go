package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAuthConfigDefaults(t *testing.T) {
	t.Setenv("RECIPEHUB_JWT_SECRET", "")
	t.Setenv("RECIPEHUB_JWT_ISSUER", "")
	t.Setenv("RECIPEHUB_JWT_TTL_HOURS", "")

	cfg := LoadAuthConfig(FileConfig{})
	require.Equal(t, "dev-secret-change-me", cfg.JWTSecret)
	require.Equal(t, "recipehub", cfg.JWTIssuer)
	require.Equal(t, 24*time.Hour, cfg.JWTDuration)
}

func TestLoadAuthConfigTTLFromEnv(t *testing.T) {
	t.Setenv("RECIPEHUB_JWT_TTL_HOURS", "3")
	require.Equal(t, 3*time.Hour, LoadAuthConfig(FileConfig{}).JWTDuration)

	t.Setenv("RECIPEHUB_JWT_TTL_HOURS", "nope")
	require.Equal(t, 24*time.Hour, LoadAuthConfig(FileConfig{}).JWTDuration)
}

func TestFileConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipehub.yaml")
	body := "http_addr: \":7000\"\nstore:\n  backend: redis\n  redis_addr: cache:6379\nauth:\n  ttl_hours: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("RECIPEHUB_CONFIG", path)
	t.Setenv("RECIPEHUB_HTTP_ADDR", "")
	t.Setenv("RECIPEHUB_STORE", "")
	t.Setenv("RECIPEHUB_REDIS_ADDR", "")
	t.Setenv("RECIPEHUB_JWT_TTL_HOURS", "")

	fc, err := LoadFileConfig()
	require.NoError(t, err)

	require.Equal(t, ":7000", LoadServerConfig(fc).HTTPAddr)
	store := LoadStoreConfig(fc)
	require.Equal(t, "redis", store.Backend)
	require.Equal(t, "cache:6379", store.RedisAddr)
	require.Equal(t, 2*time.Hour, LoadAuthConfig(fc).JWTDuration)

	t.Setenv("RECIPEHUB_STORE", "Memory")
	require.Equal(t, "memory", LoadStoreConfig(fc).Backend)
}

func TestLoadServerConfigCORSFromEnv(t *testing.T) {
	t.Setenv("RECIPEHUB_CORS_ORIGINS", "http://a.test, http://b.test,")
	require.Equal(t, []string{"http://a.test", "http://b.test"}, LoadServerConfig(FileConfig{}).CORSOrigins)
}
