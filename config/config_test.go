package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/nexus/identity"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEXUS_SERVER", "NEXUS_ASSISTANT", "NEXUS_MODEL", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, AssistantHTTP, cfg.Assistant)
	assert.Equal(t, DefaultTimeout, cfg.RequestTimeout())
	assert.Nil(t, cfg.Session)
}

func TestSaveAndReload(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	cfg.Server = "https://bi.acme.com"
	cfg.Timeout = "5s"
	cfg.Session = &identity.Identity{UserID: "999", Name: "Guest User", Email: "g@acme.com", Role: "CEO"}
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://bi.acme.com", again.Server)
	assert.Equal(t, 5*time.Second, again.RequestTimeout())
	sess, err := again.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, identity.UserID("999"), sess.UserID)
	assert.Equal(t, "CEO", sess.Role)
}

func TestAPIKeyNeverPersisted(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret-key")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.APIKey)
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-key")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://file:8000\nassistant: http\n"), 0600))
	t.Setenv("NEXUS_SERVER", "http://env:9000")
	t.Setenv("NEXUS_ASSISTANT", "Gemini")
	t.Setenv("NEXUS_MODEL", "gemini-2.0-flash")

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.Server)
	assert.Equal(t, AssistantGemini, cfg.Assistant)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
}

func TestUnknownAssistantFallsBackToHTTP(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assistant: carrier-pigeon\nserver: \"\"\n"), 0600))

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, AssistantHTTP, cfg.Assistant)
	assert.Equal(t, DefaultServer, cfg.Server)
}

func TestMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed\n"), 0600))

	_, err := LoadFile(path)

	assert.Error(t, err)
}

func TestRequireSessionAndLogout(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireSession()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	cfg.Session = &identity.Identity{Role: "HR"}
	_, err = cfg.RequireSession()
	require.NoError(t, err)

	cfg.Logout()
	_, err = cfg.RequireSession()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDirHonorsNexusHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEXUS_HOME", dir)

	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), p)

	logPath, err := LogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nexus.log"), logPath)
}
