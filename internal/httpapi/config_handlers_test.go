package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"leadscout-engine/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigServer(t *testing.T) (*httptest.Server, *atomic.Value, string) {
	t.Helper()

	var c config.Config
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

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, config.SaveAtomic(path, c))

	var cfgVal atomic.Value
	cfgVal.Store(c)

	h := ConfigHandler{
		CfgVal:      &cfgVal,
		UserCfgPath: path,
		LoadCfg:     func() (config.Config, error) { return config.Load(path) },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: h.Get,
		http.MethodPut: h.Put,
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &cfgVal, path
}

func TestConfigGet(t *testing.T) {
	srv, _, _ := newConfigServer(t)

	res, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got config.Config
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, "google_maps", got.Scrape.DefaultSource)
}

func TestConfigPutPersistsAndReloads(t *testing.T) {
	srv, cfgVal, path := newConfigServer(t)

	cur := cfgVal.Load().(config.Config)
	cur.Workers.MaxConcurrent = 5
	body, err := json.Marshal(cur)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/config", strings.NewReader(string(body)))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, 5, cfgVal.Load().(config.Config).Workers.MaxConcurrent)

	onDisk, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, onDisk.Workers.MaxConcurrent)
}

func TestConfigPutRejectsInvalid(t *testing.T) {
	srv, cfgVal, _ := newConfigServer(t)

	cur := cfgVal.Load().(config.Config)
	cur.Workers.MaxConcurrent = 0
	body, err := json.Marshal(cur)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/config", strings.NewReader(string(body)))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var vr config.Validation
	require.NoError(t, json.NewDecoder(res.Body).Decode(&vr))
	assert.NotEmpty(t, vr.Errors)

	assert.Equal(t, 3, cfgVal.Load().(config.Config).Workers.MaxConcurrent, "live config unchanged")
}
