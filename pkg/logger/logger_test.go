package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user", "ana", "api_key", "abc123", "Password", "hunter22", "dangling"})
	require.Equal(t, []interface{}{"user", "ana", "api_key", "[REDACTED]", "Password", "[REDACTED]", "dangling"}, out)
}

func TestNopLoggerAcceptsCalls(t *testing.T) {
	l := Nop().With("service", "test")
	l.Info("hello", "k", 1)
	l.Sync()
}
