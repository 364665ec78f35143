package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/infigaming-com/go-stomp/stomp"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvURL, EnvAcceptVersion, EnvAutoReconnect, EnvPingInterval, EnvConnectTimeout,
		EnvLogin, EnvPasscode, EnvJWTSecret, EnvJWTSubject, EnvDestinations,
		EnvReachabilityAddr, EnvOTLPEndpoint, "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "ws://broker.local/ws")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "ws://broker.local/ws", cfg.URL)
	assert.Equal(t, stomp.DefaultAcceptVersion, cfg.AcceptVersion)
	assert.True(t, cfg.AutoReconnect)
	assert.Equal(t, stomp.DefaultPingInterval, cfg.PingInterval)
	assert.Equal(t, stomp.DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.Equal(t, "stomp-client", cfg.JWTSubject)
	assert.Empty(t, cfg.Destinations)
	assert.Empty(t, cfg.ConnectHeaders())
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogin, "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := `STOMP_URL=wss://broker.example/ws
STOMP_AUTO_RECONNECT=false
STOMP_PING_INTERVAL=15s
STOMP_CONNECT_TIMEOUT=2.5
STOMP_LOGIN=from-file
STOMP_PASSCODE=secret
STOMP_DESTINATIONS=/topic/a, /queue/b,,/topic/a
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://broker.example/ws", cfg.URL)
	assert.False(t, cfg.AutoReconnect)
	assert.Equal(t, 15*time.Second, cfg.PingInterval)
	assert.Equal(t, 2500*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, []string{"/topic/a", "/queue/b"}, cfg.Destinations)
	assert.Equal(t, map[string]string{"login": "from-env", "passcode": "secret"}, cfg.ConnectHeaders())
	assert.Equal(t, stomp.ConnectOptions{
		Timeout:       2500 * time.Millisecond,
		AcceptVersion: stomp.DefaultAcceptVersion,
		AutoReconnect: false,
	}, cfg.ConnectOptions())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing url", env: map[string]string{}},
		{name: "bad bool", env: map[string]string{EnvURL: "ws://x", EnvAutoReconnect: "sometimes"}},
		{name: "bad duration", env: map[string]string{EnvURL: "ws://x", EnvPingInterval: "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errInvalidArgument))
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"-1", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)
			assert.Equal(t, tt.want, LogLevel())
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger, undo, err := NewLogger()
	require.NoError(t, err)
	defer undo()
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
