package main

import (
	"context"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/extract"
	"leadscout-engine/internal/extract/types"
	"leadscout-engine/internal/extract/util"
	"leadscout-engine/internal/httpapi"
	ihttp "leadscout-engine/internal/http"
	"leadscout-engine/internal/jobs"
	"leadscout-engine/internal/proxy"
	"leadscout-engine/internal/scheduler"
	"leadscout-engine/internal/secrets"
	"leadscout-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("LEADSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir. A second instance would fight over the
	// sqlite writer and double-run jobs.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running in %s", dataDir)
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayProxies(&cfg, filepath.Join(dataDir, "proxies.yml")); err != nil {
			return cfg, err
		}
		cfg, vr := config.NormalizeAndValidate(cfg)
		for _, wmsg := range vr.Warnings {
			log.Printf("[config] warn: %s", wmsg)
		}
		for _, emsg := range vr.Errors {
			log.Printf("[config] error: %s", emsg)
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "leadscout.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	sqlStore := store.NewSQLStore(db.Pool)

	// Jobs left pending/running by a previous process have no worker
	// behind them anymore.
	if n, err := sqlStore.ReconcileInterrupted(context.Background()); err != nil {
		log.Fatalf("startup reconcile failed: %v", err)
	} else if n > 0 {
		log.Printf("[store] marked %d interrupted job(s) failed", n)
	}

	var pool *proxy.Pool
	if cfg.Proxies.Enabled {
		popts := proxy.Options{
			Username:       cfg.Proxies.Username,
			FailureCeiling: cfg.Proxies.FailureCeiling,
			CooldownBase:   time.Duration(cfg.Proxies.CooldownBaseSeconds) * time.Second,
			CooldownMax:    time.Duration(cfg.Proxies.CooldownMaxSeconds) * time.Second,
		}
		if cfg.Proxies.Username != "" {
			pw, err := secrets.GetProxyPassword(secrets.ProxyKeyringAccount(cfg.Proxies.Username))
			if err != nil {
				log.Printf("[proxy] warn: %v (endpoints will be used without auth)", err)
			}
			popts.Password = pw
		}
		pool, err = proxy.NewPool(cfg.Proxies.Endpoints, popts)
		if err != nil {
			log.Fatalf("proxy pool: %v", err)
		}
		log.Printf("[proxy] pool ready with %d endpoint(s)", pool.Size())
	} else {
		log.Printf("[proxy] disabled; requests go out directly")
	}

	limiter := util.NewHostLimiter(cfg.Scrape.HostRatePerSec, cfg.Scrape.HostBurst)

	factory := func(source string, q types.Query) (jobs.Pipeline, error) {
		src, err := extract.NewSource(source)
		if err != nil {
			return nil, err
		}
		scfg := cfgVal.Load().(config.Config)
		return extract.NewPipeline(src, q, pool, limiter, extract.Options{
			MaxPages:       scfg.Scrape.MaxPages,
			RequestTimeout: time.Duration(scfg.Scrape.RequestTimeoutSeconds) * time.Second,
			JitterMin:      time.Duration(scfg.Scrape.JitterMinMillis) * time.Millisecond,
			JitterMax:      time.Duration(scfg.Scrape.JitterMaxMillis) * time.Millisecond,
		}), nil
	}

	hub := events.NewHub()

	mgr := jobs.NewManager(jobs.NewRegistry(), sqlStore, factory, jobs.Options{
		MaxWorkers:      int64(cfg.Workers.MaxConcurrent),
		DefaultMaxLeads: cfg.Scrape.DefaultMaxLeads,
		DefaultSource:   cfg.Scrape.DefaultSource,
		OnEvent: func(typ string, data map[string]any) {
			hub.Publish(events.MakeEvent("", typ, 1, data))
		},
	})

	if cfg.Retention.Days > 0 && cfg.Retention.CleanupIntervalMinutes > 0 {
		go scheduler.Every(context.Background(),
			time.Duration(cfg.Retention.CleanupIntervalMinutes)*time.Minute,
			"cleanup",
			func(ctx context.Context) error {
				n, err := sqlStore.CleanupOldJobs(ctx, cfg.Retention.Days)
				if err == nil && n > 0 {
					log.Printf("[cleanup] removed %d old job(s)", n)
				}
				return err
			})
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Manager:     mgr,
		Store:       sqlStore,
		Hub:         hub,
		Pool:        pool,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	handler := httpapi.Chain(mux,
		httpapi.Recover,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	port := cfg.App.Port
	if port <= 0 {
		port = 8090
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	log.Printf("engine starting (db=%s, data=%s)", dbPath, dataDir)
	log.Fatal(ihttp.Start(addr, handler))
}
