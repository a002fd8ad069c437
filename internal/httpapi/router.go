package httpapi

import "net/http"

// NewMux returns the raw mux so main() can keep attaching extras.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Scrape jobs
	sch := ScrapeHandler{Manager: d.Manager}
	mux.HandleFunc("/scrape/start", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Start,
	}))
	mux.HandleFunc("/scrape/status/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.StatusByPath, // expects /scrape/status/{job_id}
	}))
	mux.HandleFunc("/scrape/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Jobs,
	}))
	mux.HandleFunc("/scrape/jobs/", sch.JobByPath) // GET .../leads, DELETE .../{job_id}

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/proxy", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetProxyPassword,
		http.MethodDelete: sh.DeleteProxyPassword,
	}))

	// Stats
	th := StatsHandler{Store: d.Store, Pool: d.Pool}
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Stats,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
