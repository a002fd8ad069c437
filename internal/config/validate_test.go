package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var c Config
	c.App.Port = 8090
	c.Scrape.DefaultSource = "google_maps"
	c.Scrape.DefaultMaxLeads = 50
	c.Scrape.MaxPages = 20
	c.Scrape.RequestTimeoutSeconds = 30
	c.Scrape.JitterMinMillis = 1000
	c.Scrape.JitterMaxMillis = 3000
	c.Scrape.HostRatePerSec = 0.5
	c.Scrape.HostBurst = 1
	c.Workers.MaxConcurrent = 3
	c.Retention.Days = 30
	c.Retention.CleanupIntervalMinutes = 60
	return c
}

func TestNormalizeAndValidateOK(t *testing.T) {
	out, vr := NormalizeAndValidate(validConfig())
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)
	assert.Equal(t, "google_maps", out.Scrape.DefaultSource)
}

func TestNormalizeTrimsAndDedupesEndpoints(t *testing.T) {
	c := validConfig()
	c.Proxies.Enabled = true
	c.Proxies.Endpoints = []string{" 10.0.0.1:8080 ", "10.0.0.1:8080", "", "10.0.0.2:8080"}

	out, vr := NormalizeAndValidate(c)
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)
	assert.Equal(t, []string{"10.0.0.1:8080", "10.0.0.2:8080"}, out.Proxies.Endpoints)
}

func TestValidateCatchesBadValues(t *testing.T) {
	c := validConfig()
	c.Scrape.JitterMinMillis = 3000
	c.Scrape.JitterMaxMillis = 1000
	c.Workers.MaxConcurrent = 0
	c.Proxies.Enabled = true // no endpoints

	_, vr := NormalizeAndValidate(c)
	require.False(t, vr.OK())
	assert.GreaterOrEqual(t, len(vr.Errors), 3)
}

func TestValidateRejectsMalformedEndpoint(t *testing.T) {
	c := validConfig()
	c.Proxies.Enabled = true
	c.Proxies.Endpoints = []string{"not-a-hostport"}

	_, vr := NormalizeAndValidate(c)
	assert.False(t, vr.OK())
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	c := validConfig()
	require.NoError(t, SaveAtomic(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.App.Port, got.App.Port)
	assert.Equal(t, c.Scrape, got.Scrape)
	assert.Equal(t, c.Retention, got.Retention)

	// Second save keeps a .bak of the previous version.
	c.App.Port = 9000
	require.NoError(t, SaveAtomic(path, c))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	c := validConfig()
	c.App.Port = -1
	assert.Error(t, SaveAtomic(path, c))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "invalid config must not be written")
}

func TestEnsureUserConfigCopiesDefault(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	require.NoError(t, SaveAtomic(defaultPath, validConfig()))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	// Existing user config is left alone on the next call.
	c := validConfig()
	c.App.Port = 9999
	require.NoError(t, SaveAtomic(userPath, c))

	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	got, err := Load(again)
	require.NoError(t, err)
	assert.Equal(t, 9999, got.App.Port)
}

func TestOverlayProxies(t *testing.T) {
	dir := t.TempDir()
	overlayPath := filepath.Join(dir, "proxies.yml")
	require.NoError(t, os.WriteFile(overlayPath, []byte(
		"proxies:\n  endpoints:\n    - 10.0.0.9:8080\n  username: scout\n"), 0o644))

	c := validConfig()
	require.NoError(t, OverlayProxies(&c, overlayPath))
	assert.Equal(t, []string{"10.0.0.9:8080"}, c.Proxies.Endpoints)
	assert.Equal(t, "scout", c.Proxies.Username)

	// Missing overlay file is not an error.
	require.NoError(t, OverlayProxies(&c, filepath.Join(dir, "nope.yml")))
}
