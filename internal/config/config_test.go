package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 5, s.Parallel)
	assert.Equal(t, "flac", s.Format)
	assert.False(t, s.Force)
	require.NoError(t, s.Validate())

	policy, err := s.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 10*time.Second, policy.Base)
	assert.Equal(t, 30*time.Second, policy.MaxDelay)
}

func TestLoad_Missing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	s := DefaultSettings()
	s.Parallel = 2
	s.Format = "mp3"
	s.RetryBase = "1s"
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"parallel": 8}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Parallel)
	assert.Equal(t, "flac", s.Format)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"parallel": "many"}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	s.Parallel = 0
	s.RetryBase = "soon"
	s.Destination = ""

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parallel")
	assert.Contains(t, err.Error(), "retry_base")
	assert.Contains(t, err.Error(), "destination")
}

func TestCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.False(t, creds.Complete())

	creds.ClientID = "id"
	creds.ClientSecret = "secret"
	require.NoError(t, creds.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.True(t, loaded.Complete())
	assert.Equal(t, "id", loaded.ClientID)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvGatewayToken, "tok")
	t.Setenv(EnvGatewayURL, "http://gw")

	creds := &Credentials{ClientID: "file-id", ClientSecret: "file-secret"}
	creds.ApplyEnv()
	assert.Equal(t, "env-id", creds.ClientID)
	assert.Equal(t, "file-secret", creds.ClientSecret)
	assert.Equal(t, "tok", creds.GatewayToken)

	s := DefaultSettings()
	s.ApplyEnv()
	assert.Equal(t, "http://gw", s.GatewayURL)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "config.json", filepath.Base(SettingsPath()))
	assert.Equal(t, "credentials.json", filepath.Base(CredentialsPath()))
	assert.Equal(t, "spotify-dl.log", filepath.Base(LogPath()))
	assert.Equal(t, DirName, filepath.Base(Dir()))
}
