package httpapi

import (
	"net/http"

	"leadscout-engine/internal/proxy"
	"leadscout-engine/internal/store"
)

type StatsHandler struct {
	Store *store.SQLStore
	Pool  *proxy.Pool // nil when proxies are disabled
}

func (h StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.LoadStats(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}

	out := map[string]any{
		"jobs_by_status":  st.JobsByStatus,
		"total_leads":     st.TotalLeads,
		"leads_by_status": st.LeadsByStatus,
	}
	if h.Pool != nil {
		ps := h.Pool.Stats()
		out["proxies"] = map[string]any{
			"healthy": ps.Healthy,
			"cooling": ps.Cooling,
			"dead":    ps.Dead,
		}
	}
	writeJSON(w, out)
}
