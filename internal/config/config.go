package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		DefaultSource         string  `yaml:"default_source"`
		DefaultMaxLeads       int     `yaml:"default_max_leads"`
		MaxPages              int     `yaml:"max_pages"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
		JitterMinMillis       int     `yaml:"jitter_min_ms"`
		JitterMaxMillis       int     `yaml:"jitter_max_ms"`
		HostRatePerSec        float64 `yaml:"host_rate_per_sec"`
		HostBurst             int     `yaml:"host_burst"`
	} `yaml:"scrape"`

	Workers struct {
		MaxConcurrent int `yaml:"max_concurrent"`
	} `yaml:"workers"`

	Proxies struct {
		Enabled             bool     `yaml:"enabled"`
		Endpoints           []string `yaml:"endpoints"`
		Username            string   `yaml:"username"`
		FailureCeiling      int      `yaml:"failure_ceiling"`
		CooldownBaseSeconds int      `yaml:"cooldown_base_seconds"`
		CooldownMaxSeconds  int      `yaml:"cooldown_max_seconds"`
	} `yaml:"proxies"`

	Retention struct {
		Days                   int `yaml:"days"`
		CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
	} `yaml:"retention"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
