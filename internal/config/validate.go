package config

import (
	"fmt"
	"net"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a user
// should fix before the config is saved.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scrape.DefaultSource = strings.ToLower(strings.TrimSpace(out.Scrape.DefaultSource))
	out.Proxies.Endpoints = trimList(out.Proxies.Endpoints)
	out.Proxies.Username = strings.TrimSpace(out.Proxies.Username)

	// ---- Validation rules ----

	if out.Scrape.DefaultMaxLeads <= 0 {
		res.addErr("scrape.default_max_leads must be > 0")
	}
	if out.Scrape.MaxPages <= 0 {
		res.addErr("scrape.max_pages must be > 0")
	}
	if out.Scrape.RequestTimeoutSeconds <= 0 {
		res.addErr("scrape.request_timeout_seconds must be > 0")
	}
	if out.Scrape.JitterMinMillis < 0 || out.Scrape.JitterMaxMillis < 0 {
		res.addErr("scrape jitter bounds must be >= 0")
	} else if out.Scrape.JitterMaxMillis < out.Scrape.JitterMinMillis {
		res.addErr("scrape.jitter_max_ms must be >= scrape.jitter_min_ms")
	} else if out.Scrape.JitterMinMillis < 500 {
		res.addWarn("scrape.jitter_min_ms is very low (%d) and may trigger blocking.", out.Scrape.JitterMinMillis)
	}
	if out.Scrape.HostRatePerSec <= 0 {
		res.addErr("scrape.host_rate_per_sec must be > 0")
	} else if out.Scrape.HostRatePerSec > 2 {
		res.addWarn("scrape.host_rate_per_sec above 2 req/s is likely to get blocked.")
	}

	if out.Workers.MaxConcurrent <= 0 {
		res.addErr("workers.max_concurrent must be > 0")
	} else if out.Workers.MaxConcurrent > 16 {
		res.addWarn("workers.max_concurrent is high (%d); each worker holds a browser-like session.", out.Workers.MaxConcurrent)
	}

	if out.Proxies.Enabled {
		if len(out.Proxies.Endpoints) == 0 {
			res.addErr("proxies.endpoints is required when proxies.enabled=true")
		}
		for _, ep := range out.Proxies.Endpoints {
			if _, _, err := net.SplitHostPort(ep); err != nil {
				res.addErr("proxies.endpoints entry %q is not host:port", ep)
			}
		}
		if out.Proxies.FailureCeiling < 0 {
			res.addErr("proxies.failure_ceiling must be >= 0")
		}
		if out.Proxies.CooldownBaseSeconds < 0 || out.Proxies.CooldownMaxSeconds < 0 {
			res.addErr("proxy cooldown values must be >= 0")
		}
	} else {
		res.addWarn("proxies are disabled; all requests go out on the engine's own IP.")
	}

	if out.Retention.Days < 0 {
		res.addErr("retention.days must be >= 0 (0 disables cleanup)")
	}
	if out.Retention.CleanupIntervalMinutes < 0 {
		res.addErr("retention.cleanup_interval_minutes must be >= 0")
	}

	return out, res
}
