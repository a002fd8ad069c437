package httpapi

import (
	"sync/atomic"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/jobs"
	"leadscout-engine/internal/proxy"
	"leadscout-engine/internal/store"
)

type Deps struct {
	Manager *jobs.Manager
	Store   *store.SQLStore

	Hub *events.Hub

	// Pool is nil when proxies are disabled.
	Pool *proxy.Pool

	// Atomic store for the live config
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
