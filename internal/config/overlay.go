package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ProxiesFile is an optional sidecar (proxies.yml) so endpoint lists can
// be swapped without touching the main config.
type ProxiesFile struct {
	Proxies struct {
		Endpoints []string `yaml:"endpoints"`
		Username  string   `yaml:"username"`
	} `yaml:"proxies"`
}

func OverlayProxies(cfg *Config, proxiesPath string) error {
	b, err := os.ReadFile(proxiesPath)
	if err != nil {
		// Missing proxies file should not kill startup
		return nil
	}

	var pf ProxiesFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return err
	}

	if len(pf.Proxies.Endpoints) > 0 {
		cfg.Proxies.Endpoints = pf.Proxies.Endpoints
	}
	if pf.Proxies.Username != "" {
		cfg.Proxies.Username = pf.Proxies.Username
	}
	return nil
}
