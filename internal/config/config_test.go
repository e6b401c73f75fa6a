package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config."+env+".yaml"), []byte(body), 0o644))
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", env)
}

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	req.NoError(err)

	req.Equal("release", cfg.Mode)
	req.Equal(8080, cfg.Port)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal(4096, cfg.MaxMessageLen)
	req.Equal("badger", cfg.Store.Driver)
	req.Equal("log", cfg.Notify.Driver)
	req.Equal(10*time.Second, cfg.Notify.Timeout)
	req.True(cfg.Signaling.NotifyPeerLeft)

	ice, err := cfg.ICEServers()
	req.NoError(err)
	req.Len(ice, 1)
	req.Equal([]string{"stun:stun.l.google.com:19302"}, ice[0].URLs)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	req := require.New(t)
	writeConfig(t, "test", `
mode: debug
port: 9000
store:
  driver: postgres
  dsn: postgres://localhost/tandem
signaling:
  notify_peer_left: false
ice_servers:
  - urls: ["turn:turn.example.org:3478?transport=udp"]
    username: alice
    credential: secret
`)
	t.Setenv("TANDEM_PORT", "9100")
	t.Setenv("TANDEM_NOTIFY_TITLE", "Ping")

	cfg, err := Load()
	req.NoError(err)

	req.Equal("debug", cfg.Mode)
	req.Equal(9100, cfg.Port)
	req.Equal("postgres", cfg.Store.Driver)
	req.Equal("postgres://localhost/tandem", cfg.Store.DSN)
	req.Equal("Ping", cfg.Notify.Title)
	req.False(cfg.Signaling.NotifyPeerLeft)

	ice, err := cfg.ICEServers()
	req.NoError(err)
	req.Len(ice, 1)
	req.Equal("alice", ice[0].Username)
	req.Equal("secret", ice[0].Credential)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"postgres without dsn": "store:\n  driver: postgres\n",
		"unknown store":        "store:\n  driver: redis\n",
		"unknown notifier":     "notify:\n  driver: apns\n",
		"bad ice url":          "ice_servers:\n  - urls: [\"http://nope\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			writeConfig(t, "bad", body)
			_, err := Load()
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestApplyLogLevel(t *testing.T) {
	req := require.New(t)
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	ApplyLogLevel("warn")
	req.Equal(zerolog.WarnLevel, zerolog.GlobalLevel())

	ApplyLogLevel("loud")
	req.Equal(zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestLoad_FCMWithoutCredentialsFileUsesDefaultCredentials(t *testing.T) {
	req := require.New(t)
	writeConfig(t, "adc", "notify:\n  driver: fcm\n")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("fcm", cfg.Notify.Driver)
	req.Empty(cfg.Notify.CredentialsFile)
}
